package gateway

import (
	"strconv"
	"time"
)

// Platform epoch: first millisecond of 2015.
const snowflakeEpochMS = 1420070400000

// SnowflakeTime extracts the creation timestamp embedded in a snowflake
// id. Returns the zero time for unparsable input.
func SnowflakeTime(s string) time.Time {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	ms := int64(n>>22) + snowflakeEpochMS
	return time.UnixMilli(ms).UTC()
}
