package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: wanderly:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // trip details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // trip listings
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // upcoming trips
	TTL_DYNAMIC_SHORT      = 5 * time.Minute  // product listings
	TTL_REALTIME_SHORT     = 30 * time.Second // seat maps
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "wanderly"
)

// ================== TRIPS MODULE ==================

const (
	CACHE_KEY_TRIPS_LIST     = CACHE_PREFIX + ":trips:list"         // + :page:X:limit:Y
	CACHE_KEY_TRIPS_UPCOMING = CACHE_PREFIX + ":trips:upcoming"     // + :limit:X
	CACHE_KEY_TRIP_DETAIL    = CACHE_PREFIX + ":trips:detail:uuid:" // + trip-id
)

// ================== TICKETS MODULE ==================

const (
	CACHE_KEY_SEAT_MAP = CACHE_PREFIX + ":tickets:seats:trip:" // + trip-id
)

// ================== PRODUCTS MODULE ==================

const (
	CACHE_KEY_PRODUCTS_LIST  = CACHE_PREFIX + ":products:list"         // + :page:X:limit:Y
	CACHE_KEY_PRODUCT_DETAIL = CACHE_PREFIX + ":products:detail:uuid:" // + product-id
)

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit" // + :ip:type
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_TRIP_LISTS    = CACHE_PREFIX + ":trips:list*"
	PATTERN_INVALIDATE_TRIP_UPCOMING = CACHE_PREFIX + ":trips:upcoming*"
	PATTERN_INVALIDATE_PRODUCTS_LIST = CACHE_PREFIX + ":products:list*"
)

// ================== KEY BUILDERS ==================

func BuildTripListKey(page, limit int) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_TRIPS_LIST, page, limit)
}

func BuildUpcomingTripsKey(limit int) string {
	return fmt.Sprintf("%s:limit:%d", CACHE_KEY_TRIPS_UPCOMING, limit)
}

func BuildTripDetailKey(tripID string) string {
	return CACHE_KEY_TRIP_DETAIL + tripID
}

func BuildSeatMapKey(tripID string) string {
	return CACHE_KEY_SEAT_MAP + tripID
}

func BuildProductListKey(page, limit int) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_PRODUCTS_LIST, page, limit)
}

func BuildProductDetailKey(productID string) string {
	return CACHE_KEY_PRODUCT_DETAIL + productID
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return CACHE_KEY_RATE_LIMIT + ":" + clientIP + ":" + limitType
}
