// Package models defines the data types shared by the Somgil client components.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PackageType is a filter key for catalog queries.
type PackageType string

const (
	TypeHealing  PackageType = "HEALING"
	TypeCouple   PackageType = "COUPLE"
	TypeActivity PackageType = "ACTIVITY"
	TypeRetro    PackageType = "RETRO"
	TypeGolmok   PackageType = "GOLMOK"
	TypeLocal    PackageType = "LOCAL"
	TypeTheme    PackageType = "THEME"
	TypeShip     PackageType = "SHIP"
)

// PackageTypes lists every valid catalog filter.
var PackageTypes = []PackageType{
	TypeHealing, TypeCouple, TypeActivity, TypeRetro,
	TypeGolmok, TypeLocal, TypeTheme, TypeShip,
}

// Valid reports whether t is one of the known package types.
func (t PackageType) Valid() bool {
	for _, known := range PackageTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParsePackageType converts user input to a PackageType.
func ParsePackageType(s string) (PackageType, error) {
	t := PackageType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown package type %q", s)
	}
	return t, nil
}

// Course is one stop within a package itinerary.
type Course struct {
	Region      string `json:"region"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Package is a travel package as served by the catalog. Read-only on
// the client side.
type Package struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        int64       `json:"price"` // minor currency unit (won)
	ImageURL     string      `json:"imageUrl"`
	ReviewRating float64     `json:"reviewRating"`
	ReviewCount  int         `json:"reviewCount"`
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	Courses      []Course    `json:"courses"`
	Tags         []string    `json:"tags"`
	Type         PackageType `json:"type"`
}

// PartyComposition holds the traveler counts for a reservation.
type PartyComposition struct {
	AdultCount  int `json:"adultCount"`
	ChildCount  int `json:"childCount"`
	InfantCount int `json:"infantCount"`
}

// Normalize clamps negative counts to zero.
func (p PartyComposition) Normalize() PartyComposition {
	if p.AdultCount < 0 {
		p.AdultCount = 0
	}
	if p.ChildCount < 0 {
		p.ChildCount = 0
	}
	if p.InfantCount < 0 {
		p.InfantCount = 0
	}
	return p
}

// Size returns the total number of travelers.
func (p PartyComposition) Size() int {
	p = p.Normalize()
	return p.AdultCount + p.ChildCount + p.InfantCount
}

// ParseCount converts free-form counter input to a non-negative count.
// Non-numeric input coerces to 0, matching the order form behavior.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ReservationRequest is the body sent to both the price-approval and the
// reservation-creation endpoints. Built fresh per submission attempt.
type ReservationRequest struct {
	PackageID       int64  `json:"packageId"`
	AdultCount      int    `json:"adultCount"`
	ChildCount      int    `json:"childCount"`
	InfantCount     int    `json:"infantCount"`
	ReservationDate string `json:"reservationDate"` // YYYY-MM-DD
	TotalPrice      int64  `json:"totalPrice"`
}

// ReservationStatus is the server-side lifecycle label of a reservation.
// Wire values are the Korean labels the backend serves.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "예약중"
	StatusConfirmed  ReservationStatus = "예약완료"
	StatusReviewable ReservationStatus = "리뷰작성"
)

// Reservation is a server-owned reservation record, read-only on the client.
type Reservation struct {
	ID              int64             `json:"id"`
	PackageName     string            `json:"packageName"`
	ReservationDate string            `json:"reservationDate"`
	AdultCount      int               `json:"adultCount"`
	ChildCount      int               `json:"childCount"`
	InfantCount     int               `json:"infantCount"`
	TotalPrice      int64             `json:"totalPrice"`
	Status          ReservationStatus `json:"status"`
}

// Review is a package review tied to a completed reservation.
type Review struct {
	ReservationID int64  `json:"reservationId,omitempty"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Rating        int    `json:"rating"` // 1..5
	Date          string `json:"date"`   // YYYY-MM-DD
	Image         string `json:"image"`
	Location      string `json:"location"`
	Destination   string `json:"destination"`
}

// DateFormat is the calendar-date layout used on the wire.
const DateFormat = "2006-01-02"

// FormatDate renders t as a wire calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}
