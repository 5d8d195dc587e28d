package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
	"github.com/shandysiswandi/riskguard/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "identity:otp:"

// retention keeps an expired slot readable for a short while past ExpiresAt.
const retention = time.Minute

var markUsedScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "id") ~= ARGV[1] then
	return 0
end
if redis.call("HGET", KEYS[1], "used") ~= "0" then
	return 0
end
redis.call("HSET", KEYS[1], "used", "1")
return 1
`)

// Cache stores one OTP slot per principal as a redis hash.
type Cache struct {
	client redis.Cmdable
	ins    instrument.Instrumentation
}

func NewCache(client redis.Cmdable, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func key(principal string) string {
	return keyPrefix + principal
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("identity.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SupersedeAndInsert rewrites the whole slot in one MULTI/EXEC block.
func (c *Cache) SupersedeAndInsert(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := c.startSpan(ctx, "SupersedeAndInsert")
	defer func() { c.endSpan(span, err) }()

	k := key(rec.Principal)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, map[string]any{
			"id":         strconv.FormatInt(rec.ID, 10),
			"code_hash":  rec.CodeHash,
			"address":    rec.Address,
			"channel":    rec.Channel,
			"expires_at": rec.ExpiresAt.UnixMilli(),
			"created_at": rec.CreatedAt.UnixMilli(),
			"used":       "0",
		})
		pipe.PExpireAt(ctx, k, rec.ExpiresAt.Add(retention))
		return nil
	})
	return err
}

func (c *Cache) GetActive(ctx context.Context, principal string) (_ *entity.OTPRecord, err error) {
	ctx, span := c.startSpan(ctx, "GetActive")
	defer func() { c.endSpan(span, err) }()

	fields, err := c.client.HGetAll(ctx, key(principal)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 || fields["used"] != "0" {
		return nil, goerror.ErrNotFound
	}

	return decode(principal, fields)
}

// MarkUsed sets used=1 only if the slot still holds rec and is unused.
func (c *Cache) MarkUsed(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := c.startSpan(ctx, "MarkUsed")
	defer func() { c.endSpan(span, err) }()

	n, err := markUsedScript.Run(ctx, c.client, []string{key(rec.Principal)}, strconv.FormatInt(rec.ID, 10)).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return goerror.ErrConflict
	}

	return nil
}

func decode(principal string, fields map[string]string) (*entity.OTPRecord, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, err
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, err
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, err
	}

	return &entity.OTPRecord{
		ID:        id,
		Principal: principal,
		CodeHash:  fields["code_hash"],
		Address:   fields["address"],
		Channel:   fields["channel"],
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
		Used:      fields["used"] == "1",
		CreatedAt: time.UnixMilli(createdAt).UTC(),
	}, nil
}
