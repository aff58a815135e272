package timezone

import "time"

const DefaultTimezone = "Asia/Ho_Chi_Minh"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// Clock supplies "now" to everything that depends on the current date or time.
type Clock interface {
	Now() time.Time
}

type ShopClock struct {
	loc *time.Location
}

func NewShopClock(tz string) *ShopClock {
	return &ShopClock{loc: Location(tz)}
}

func (c *ShopClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *ShopClock) Location() *time.Location {
	return c.loc
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
