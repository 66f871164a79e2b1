package mongo

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// decimalFromFloat converts a float to the store's fixed-point representation
// via the shortest decimal string that round-trips the value, so monetary and
// duration amounts survive write/read without precision drift.
func decimalFromFloat(v float64) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(strconv.FormatFloat(v, 'f', -1, 64))
}

// floatFromDecimal converts a stored fixed-point value back to float64.
func floatFromDecimal(d primitive.Decimal128) (float64, error) {
	return strconv.ParseFloat(d.String(), 64)
}

// formatTime serialises a timestamp as ISO-8601 on the storage boundary.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises an ISO-8601 timestamp, with or without fractional
// seconds.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
