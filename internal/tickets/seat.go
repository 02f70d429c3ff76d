package tickets

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"wanderly/internal/trips"
)

// SeatPrefix returns the seat-number prefix of a class
func SeatPrefix(class string) (string, bool) {
	p, ok := trips.SeatClassPrefixes[class]
	return p, ok
}

// ParseSeat checks that seat is prefix followed by a number in 1..block
func ParseSeat(seat, prefix string, block int) (int, bool) {
	if !strings.HasPrefix(seat, prefix) {
		return 0, false
	}
	digits := seat[len(prefix):]
	if digits == "" || digits[0] == '0' {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > block {
		return 0, false
	}
	return n, true
}

// NextFreeSeat is the lowest numbered seat of the block not in held
func NextFreeSeat(prefix string, block int, held map[string]bool) (string, bool) {
	for n := 1; n <= block; n++ {
		seat := prefix + strconv.Itoa(n)
		if !held[seat] {
			return seat, true
		}
	}
	return "", false
}

// BuildSeatMap lists the free seats of every class on the trip
func BuildSeatMap(trip *trips.Trip, held []string) *SeatMap {
	heldSet := make(map[string]bool, len(held))
	for _, s := range held {
		heldSet[s] = true
	}

	block := trip.ClassBlockSize()
	available := make(map[string][]string, len(trip.SeatClasses))
	for _, class := range trip.SeatClasses {
		prefix, ok := SeatPrefix(class)
		if !ok {
			continue
		}
		free := make([]string, 0, block)
		for n := 1; n <= block; n++ {
			seat := prefix + strconv.Itoa(n)
			if !heldSet[seat] {
				free = append(free, seat)
			}
		}
		available[class] = free
	}

	reserved := append([]string(nil), held...)
	sort.Strings(reserved)

	return &SeatMap{
		TotalAvailable: trip.AvailableSeats,
		AvailableSeats: available,
		ReservedSeats:  reserved,
		SeatClasses:    trip.SeatClasses,
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewTicketNumber returns TKT-<unix-ms>-<9 base36 chars>
func NewTicketNumber(now time.Time) string {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return fmt.Sprintf("TKT-%d-%s", now.UnixMilli(), buf)
}
