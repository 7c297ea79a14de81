package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FallbackLabel is the vendor label used when a category has none.
const FallbackLabel = "一般"

// Game is one IME dictionary project.
type Game struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	Code      string    `gorm:"column:code" json:"code"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Game) TableName() string {
	return "games"
}

// Category groups entries and carries the label each IME vendor expects.
type Category struct {
	ID            uint      `gorm:"column:id;primaryKey" json:"id"`
	Name          string    `gorm:"column:name" json:"name"`
	GoogleImeName *string   `gorm:"column:google_ime_name" json:"google_ime_name"`
	MsImeName     *string   `gorm:"column:ms_ime_name" json:"ms_ime_name"`
	AtokName      *string   `gorm:"column:atok_name" json:"atok_name"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Category) TableName() string {
	return "categories"
}

// VendorName returns the label for the vendor, or FallbackLabel when unset.
func (c Category) VendorName(v Vendor) string {
	var name *string
	switch v {
	case VendorGoogle:
		name = c.GoogleImeName
	case VendorMS:
		name = c.MsImeName
	case VendorATOK:
		name = c.AtokName
	}
	if name == nil || *name == "" {
		return FallbackLabel
	}
	return *name
}

// Entry is a single dictionary word scoped to one game.
type Entry struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	GameID      uint      `gorm:"column:game_id" json:"game_id"`
	CategoryID  uint      `gorm:"column:category_id" json:"category_id"`
	Reading     string    `gorm:"column:reading" json:"reading"`
	Word        string    `gorm:"column:word" json:"word"`
	Description *string   `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Entry) TableName() string {
	return "entries"
}

// DescriptionText returns the description or an empty string.
func (e Entry) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// EntryWithDetails is an entry joined with its game and category names.
type EntryWithDetails struct {
	Entry
	GameName     string `gorm:"column:game_name" json:"game_name"`
	CategoryName string `gorm:"column:category_name" json:"category_name"`
}

// Vendor identifies a third-party IME product.
type Vendor string

const (
	VendorGoogle Vendor = "google"
	VendorMS     Vendor = "ms"
	VendorATOK   Vendor = "atok"
)

// ErrUnknownVendor is returned for a vendor tag outside google, ms, atok.
var ErrUnknownVendor = errors.New("unknown IME vendor")

// ParseVendor parses a vendor tag case-insensitively.
func ParseVendor(s string) (Vendor, error) {
	switch v := Vendor(strings.ToLower(strings.TrimSpace(s))); v {
	case VendorGoogle, VendorMS, VendorATOK:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVendor, s)
	}
}

// StringPtr returns nil for an empty string, a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
