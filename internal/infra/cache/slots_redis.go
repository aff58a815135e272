package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/appointment"
)

const (
	DefaultSlotTTL = 5 * time.Minute
	genTTL         = 24 * time.Hour
)

var errStaleGen = errors.New("slot cache generation moved")

// SlotCache keeps FreeSlots results in Redis under slots:<barber>:<date>,
// guarded by the counters slotgen:<barber> and slotgen:<barber>:<date>.
// Failures are logged and treated as a miss.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *SlotCache {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotCache{rdb: rdb, ttl: ttl, log: log}
}

func slotKey(barberID uint, date string) string {
	return fmt.Sprintf("slots:%d:%s", barberID, date)
}

func barberGenKey(barberID uint) string {
	return fmt.Sprintf("slotgen:%d", barberID)
}

func dayGenKey(barberID uint, date string) string {
	return fmt.Sprintf("slotgen:%d:%s", barberID, date)
}

// readGen treats missing counters as zero.
func readGen(ctx context.Context, rc redis.Cmdable, barberID uint, date string) (domain.CacheGen, error) {
	vals, err := rc.MGet(ctx, barberGenKey(barberID), dayGenKey(barberID, date)).Result()
	if err != nil {
		return domain.CacheGen{}, err
	}
	var n [2]int64
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if n[i], err = strconv.ParseInt(s, 10, 64); err != nil {
			return domain.CacheGen{}, err
		}
	}
	return domain.CacheGen{Barber: n[0], Day: n[1]}, nil
}

func (c *SlotCache) Get(ctx context.Context, barberID uint, date string) (*domain.Availability, bool) {
	raw, err := c.rdb.Get(ctx, slotKey(barberID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn("slot cache get failed", zap.Uint("barber_id", barberID), zap.String("date", date), zap.Error(err))
		return nil, false
	}

	var a domain.Availability
	if err := json.Unmarshal(raw, &a); err != nil {
		c.log.Warn("slot cache entry corrupt", zap.String("key", slotKey(barberID, date)), zap.Error(err))
		return nil, false
	}
	return &a, true
}

func (c *SlotCache) Generation(ctx context.Context, barberID uint, date string) (domain.CacheGen, bool) {
	gen, err := readGen(ctx, c.rdb, barberID, date)
	if err != nil {
		c.log.Warn("slot cache generation read failed", zap.Uint("barber_id", barberID), zap.String("date", date), zap.Error(err))
		return domain.CacheGen{}, false
	}
	return gen, true
}

// Set stores a only while both generation counters still equal gen.
func (c *SlotCache) Set(ctx context.Context, a *domain.Availability, gen domain.CacheGen) {
	raw, err := json.Marshal(a)
	if err != nil {
		c.log.Warn("slot cache marshal failed", zap.Error(err))
		return
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGen(ctx, tx, a.BarberID, a.Date)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGen
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, slotKey(a.BarberID, a.Date), raw, c.ttl)
			return nil
		})
		return err
	}, barberGenKey(a.BarberID), dayGenKey(a.BarberID, a.Date))

	switch {
	case err == nil:
	case errors.Is(err, errStaleGen), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("slot cache set skipped, invalidated meanwhile",
			zap.Uint("barber_id", a.BarberID), zap.String("date", a.Date))
	default:
		c.log.Warn("slot cache set failed", zap.Uint("barber_id", a.BarberID), zap.String("date", a.Date), zap.Error(err))
	}
}

// Invalidate bumps the date generations before deleting the entries, so a
// reader that computed its list before the write cannot store it afterwards.
func (c *SlotCache) Invalidate(ctx context.Context, barberID uint, dates ...string) {
	if len(dates) == 0 {
		return
	}
	keys := make([]string, 0, len(dates))
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, d := range dates {
			p.Incr(ctx, dayGenKey(barberID, d))
			p.Expire(ctx, dayGenKey(barberID, d), genTTL)
			keys = append(keys, slotKey(barberID, d))
		}
		p.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.log.Warn("slot cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *SlotCache) InvalidateBarber(ctx context.Context, barberID uint) {
	if err := c.rdb.Incr(ctx, barberGenKey(barberID)).Err(); err != nil {
		c.log.Warn("slot cache generation bump failed", zap.Uint("barber_id", barberID), zap.Error(err))
	}

	pattern := fmt.Sprintf("slots:%d:*", barberID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("slot cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("slot cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

var _ domain.SlotCache = (*SlotCache)(nil)
