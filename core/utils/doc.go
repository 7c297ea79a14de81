// Package utils provides small helpers shared by the dictionary manager:
// game code validation and derivation, kana conversion and file name slugs.
package utils
