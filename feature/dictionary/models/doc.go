// Package models defines the persisted dictionary entities (Game, Category,
// Entry) and the IME vendor tags used by vendor exports.
package models
