package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anirudhm/vastra-checkout/internal/core/domain"
)

const (
	stockKeyPrefix   = "stock:"
	couponKeyPrefix  = "coupon:"
	loyaltyKeyPrefix = "loyalty:"
	requestKeyPrefix = "checkout:req:"
	requestKeyTTL    = 24 * time.Hour
)

// reserveStockScript decrements stock by quantity only if enough is
// available. Returns {1, remaining} on success, {0, current} when short and
// {-1, 0} when the product key does not exist.
var reserveStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return {-1, 0}
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return {1, current - quantity}
end

return {0, current}
`)

// reserveCouponScript re-checks every coupon rule and consumes one usage unit
// in the same atomic step. Result codes: 1 ok, 0 not found, -1 inactive or
// outside validity window, -2 usage limit reached, -3 order below minimum.
var reserveCouponScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local subtotal = tonumber(ARGV[2])

if redis.call('EXISTS', key) == 0 then
	return 0
end

local f = redis.call('HMGET', key, 'active', 'valid_from', 'valid_to', 'min_order', 'usage_limit', 'used')
local active = tonumber(f[1]) or 0
local valid_from = tonumber(f[2]) or 0
local valid_to = tonumber(f[3]) or 0
local min_order = tonumber(f[4]) or 0
local limit = tonumber(f[5]) or 0
local used = tonumber(f[6]) or 0

if active ~= 1 then
	return -1
end
if valid_from > 0 and now < valid_from then
	return -1
end
if valid_to > 0 and now > valid_to then
	return -1
end
if limit > 0 and used >= limit then
	return -2
end
if subtotal < min_order then
	return -3
end

redis.call('HINCRBY', key, 'used', 1)
return 1
`)

// releaseCouponScript returns one usage unit, floored at zero.
var releaseCouponScript = redis.NewScript(`
local used = tonumber(redis.call('HGET', KEYS[1], 'used')) or 0
if used > 0 then
	redis.call('HINCRBY', KEYS[1], 'used', -1)
end
return used
`)

// redeemPointsScript deducts points only if the balance covers them.
var redeemPointsScript = redis.NewScript(`
local balance = tonumber(redis.call('GET', KEYS[1])) or 0
local points = tonumber(ARGV[1])
if balance >= points then
	redis.call('DECRBY', KEYS[1], points)
	return 1
end
return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) ReserveStock(ctx context.Context, productID string, quantity int) error {
	key := stockKeyPrefix + productID

	res, err := reserveStockScript.Run(ctx, r.client, []string{key}, quantity).Int64Slice()
	if err != nil {
		return fmt.Errorf("reserve stock %s: %w", productID, err)
	}
	if len(res) != 2 {
		return fmt.Errorf("reserve stock %s: unexpected script result %v", productID, res)
	}

	switch res[0] {
	case 1:
		return nil
	case -1:
		return &domain.StockError{ProductID: productID, Requested: quantity, NotFound: true}
	default:
		return &domain.StockError{ProductID: productID, Requested: quantity, Available: int(res[1])}
	}
}

func (r *RedisAdapter) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	key := stockKeyPrefix + productID
	return r.client.IncrBy(ctx, key, int64(quantity)).Err()
}

func (r *RedisAdapter) StockLevel(ctx context.Context, productID string) (int, error) {
	level, err := r.client.Get(ctx, stockKeyPrefix+productID).Int()
	if err == redis.Nil {
		return 0, &domain.StockError{ProductID: productID, NotFound: true}
	}
	if err != nil {
		return 0, fmt.Errorf("stock level %s: %w", productID, err)
	}
	return level, nil
}

func (r *RedisAdapter) ReserveCoupon(ctx context.Context, code string, orderSubtotal int64) error {
	key := couponKeyPrefix + code

	res, err := reserveCouponScript.Run(ctx, r.client, []string{key},
		time.Now().Unix(), orderSubtotal).Int()
	if err != nil {
		return fmt.Errorf("reserve coupon %s: %w", code, err)
	}

	switch res {
	case 1:
		return nil
	case 0:
		return &domain.CouponError{Code: code, Reason: domain.CouponNotFound}
	case -1:
		return &domain.CouponError{Code: code, Reason: domain.CouponExpired}
	case -2:
		return &domain.CouponError{Code: code, Reason: domain.CouponLimitReached}
	default:
		return &domain.CouponError{Code: code, Reason: domain.CouponBelowMinimum}
	}
}

func (r *RedisAdapter) ReleaseCoupon(ctx context.Context, code string) error {
	key := couponKeyPrefix + code
	return releaseCouponScript.Run(ctx, r.client, []string{key}).Err()
}

func (r *RedisAdapter) LookupCoupon(ctx context.Context, code string) (domain.Coupon, error) {
	fields, err := r.client.HGetAll(ctx, couponKeyPrefix+code).Result()
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("lookup coupon %s: %w", code, err)
	}
	if len(fields) == 0 {
		return domain.Coupon{}, &domain.CouponError{Code: code, Reason: domain.CouponNotFound}
	}

	c := domain.Coupon{Code: code}
	c.Active = fields["active"] == "1"
	c.Percent, _ = strconv.ParseFloat(fields["percent"], 64)
	c.MinOrder, _ = strconv.ParseInt(fields["min_order"], 10, 64)
	c.UsageLimit, _ = strconv.Atoi(fields["usage_limit"])
	if unix, _ := strconv.ParseInt(fields["valid_from"], 10, 64); unix > 0 {
		c.ValidFrom = time.Unix(unix, 0)
	}
	if unix, _ := strconv.ParseInt(fields["valid_to"], 10, 64); unix > 0 {
		c.ValidTo = time.Unix(unix, 0)
	}
	return c, nil
}

func (r *RedisAdapter) Claim(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, requestKeyPrefix+key, 1, requestKeyTTL).Result()
}

func (r *RedisAdapter) Earn(ctx context.Context, userID string, points int64) error {
	return r.client.IncrBy(ctx, loyaltyKeyPrefix+userID, points).Err()
}

func (r *RedisAdapter) Redeem(ctx context.Context, userID string, points int64) error {
	ok, err := redeemPointsScript.Run(ctx, r.client, []string{loyaltyKeyPrefix + userID}, points).Int()
	if err != nil {
		return fmt.Errorf("redeem points for %s: %w", userID, err)
	}
	if ok != 1 {
		return fmt.Errorf("redeem points for %s: balance below %d", userID, points)
	}
	return nil
}

// SetStock seeds a product's stock. Admin/bootstrap operation.
func (r *RedisAdapter) SetStock(ctx context.Context, productID string, quantity int) error {
	return r.client.Set(ctx, stockKeyPrefix+productID, quantity, 0).Err()
}

// SeedCoupon writes a coupon's rules. Admin/bootstrap operation.
func (r *RedisAdapter) SeedCoupon(ctx context.Context, c domain.Coupon) error {
	active := 0
	if c.Active {
		active = 1
	}
	var from, to int64
	if !c.ValidFrom.IsZero() {
		from = c.ValidFrom.Unix()
	}
	if !c.ValidTo.IsZero() {
		to = c.ValidTo.Unix()
	}
	return r.client.HSet(ctx, couponKeyPrefix+c.Code, map[string]any{
		"percent":     c.Percent,
		"active":      active,
		"valid_from":  from,
		"valid_to":    to,
		"min_order":   c.MinOrder,
		"usage_limit": c.UsageLimit,
		"used":        0,
	}).Err()
}

// CouponUsage reads the current usage counter. Test/ops helper.
func (r *RedisAdapter) CouponUsage(ctx context.Context, code string) (int, error) {
	used, err := r.client.HGet(ctx, couponKeyPrefix+code, "used").Int()
	if err == redis.Nil {
		return 0, nil
	}
	return used, err
}
