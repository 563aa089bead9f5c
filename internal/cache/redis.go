package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RedisConfig holds the connection settings for RedisClient.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration
	// Prefix namespaces every key. Defaults to "portfolio:".
	Prefix string
}

const (
	defaultRedisTimeout = 5 * time.Second
	defaultRedisPrefix  = "portfolio:"
)

// incrementScript bumps a fixed-window counter. The expiry is only applied
// when the key is created; the reply is {count, remaining milliseconds}.
const incrementScript = `local n = redis.call('INCR', KEYS[1])
if n == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
return {n, redis.call('PTTL', KEYS[1])}`

// RedisClient is a Store on a single Redis connection. Exchanges are
// serialised; an I/O failure drops the connection and the next call redials.
type RedisClient struct {
	cfg RedisConfig

	mu   sync.Mutex
	conn net.Conn
	rd   *respReader
}

// NewRedisClient connects immediately so a bad address fails at startup.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultRedisPrefix
	}

	c := &RedisClient{cfg: cfg}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the connection.
func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.rd = nil, nil
	return err
}

// IncrementWithTTL counts a hit in the window that starts with the first hit.
// It costs a single round-trip.
func (c *RedisClient) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	window = counterWindow(window)

	r, err := c.call(ctx, "EVAL", incrementScript, "1", c.key(key), millis(window))
	if err != nil {
		return 0, 0, err
	}
	if r.kind != replyArray || len(r.items) != 2 || r.items[0].kind != replyInt || r.items[1].kind != replyInt {
		return 0, 0, fmt.Errorf("redis: unexpected counter reply %s", r)
	}

	ttl := time.Duration(r.items[1].n) * time.Millisecond
	if ttl <= 0 {
		ttl = window
	}
	return r.items[0].n, ttl, nil
}

// Set stores value. A non-positive ttl stores without expiry.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r, err := c.call(ctx, setCommand(c.key(key), value, ttl, false)...)
	if err != nil {
		return err
	}
	if r.kind != replyStatus {
		return fmt.Errorf("redis: unexpected SET reply %s", r)
	}
	return nil
}

// SetNX stores value only when key is absent and reports whether it did.
func (c *RedisClient) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	r, err := c.call(ctx, setCommand(c.key(key), value, ttl, true)...)
	if err != nil {
		return false, err
	}
	switch {
	case r.null:
		return false, nil
	case r.kind == replyStatus:
		return true, nil
	default:
		return false, fmt.Errorf("redis: unexpected SET NX reply %s", r)
	}
}

// Get returns the stored value and whether it was present.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r, err := c.call(ctx, "GET", c.key(key))
	if err != nil {
		return nil, false, err
	}
	if r.kind != replyBulk {
		return nil, false, fmt.Errorf("redis: unexpected GET reply %s", r)
	}
	if r.null {
		return nil, false, nil
	}
	return r.bulk, true, nil
}

// Delete removes keys. Missing keys are ignored.
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := append(make([]string, 0, len(keys)+1), "DEL")
	for _, key := range keys {
		args = append(args, c.key(key))
	}
	_, err := c.call(ctx, args...)
	return err
}

func (c *RedisClient) key(key string) string {
	return c.cfg.Prefix + key
}

// call runs one command. Redis error replies are returned as errors without
// dropping the connection.
func (c *RedisClient) call(ctx context.Context, args ...string) (reply, error) {
	replies, err := c.pipeline(ctx, args)
	if err != nil {
		return reply{}, err
	}
	return replies[0], replies[0].err()
}

// pipeline writes every command in one batch and reads their replies.
func (c *RedisClient) pipeline(ctx context.Context, cmds ...[]string) ([]reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return nil, err
		}
	}

	replies, err := exchange(c.conn, c.rd, c.deadline(ctx), cmds)
	if err != nil {
		_ = c.conn.Close()
		c.conn, c.rd = nil, nil
		return nil, err
	}
	return replies, nil
}

func (c *RedisClient) connectLocked(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var dialer interface {
		DialContext(ctx context.Context, network, addr string) (net.Conn, error)
	} = &net.Dialer{}
	if c.cfg.TLS {
		dialer = &tls.Dialer{}
	}
	conn, err := dialer.DialContext(dialCtx, "tcp", c.cfg.Address)
	if err != nil {
		return fmt.Errorf("redis: dial %s: %w", c.cfg.Address, err)
	}
	rd := &respReader{br: bufio.NewReader(conn)}

	var handshake [][]string
	switch {
	case c.cfg.Username != "":
		handshake = append(handshake, []string{"AUTH", c.cfg.Username, c.cfg.Password})
	case c.cfg.Password != "":
		handshake = append(handshake, []string{"AUTH", c.cfg.Password})
	}
	if c.cfg.DB > 0 {
		handshake = append(handshake, []string{"SELECT", strconv.Itoa(c.cfg.DB)})
	}

	if len(handshake) > 0 {
		replies, err := exchange(conn, rd, c.deadline(ctx), handshake)
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("redis: handshake: %w", err)
		}
		for i, r := range replies {
			if err := r.err(); err != nil {
				_ = conn.Close()
				return fmt.Errorf("redis: %s: %w", handshake[i][0], err)
			}
		}
	}

	c.conn, c.rd = conn, rd
	return nil
}

func (c *RedisClient) deadline(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(c.cfg.Timeout)
}

func exchange(conn net.Conn, rd *respReader, deadline time.Time, cmds [][]string) ([]reply, error) {
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	var buf []byte
	for _, cmd := range cmds {
		buf = appendCommand(buf, cmd)
	}
	if _, err := conn.Write(buf); err != nil {
		return nil, err
	}

	replies := make([]reply, len(cmds))
	for i := range replies {
		r, err := rd.read()
		if err != nil {
			return nil, err
		}
		replies[i] = r
	}
	return replies, nil
}

func setCommand(key string, value []byte, ttl time.Duration, onlyIfAbsent bool) []string {
	args := []string{"SET", key, string(value)}
	if ttl > 0 {
		args = append(args, "PX", millis(ttl))
	}
	if onlyIfAbsent {
		args = append(args, "NX")
	}
	return args
}

func millis(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10)
}

// appendCommand encodes args as a RESP array of bulk strings.
func appendCommand(buf []byte, args []string) []byte {
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(len(args)), 10)
	buf = append(buf, '\r', '\n')
	for _, arg := range args {
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(arg)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, arg...)
		buf = append(buf, '\r', '\n')
	}
	return buf
}

type replyKind byte

const (
	replyStatus replyKind = '+'
	replyError  replyKind = '-'
	replyInt    replyKind = ':'
	replyBulk   replyKind = '$'
	replyArray  replyKind = '*'
)

// reply is a decoded RESP2 value.
type reply struct {
	kind  replyKind
	text  string
	n     int64
	bulk  []byte
	items []reply
	null  bool
}

func (r reply) err() error {
	if r.kind == replyError {
		return errors.New(r.text)
	}
	return nil
}

func (r reply) String() string {
	switch {
	case r.null:
		return string(rune(r.kind)) + "nil"
	case r.kind == replyInt:
		return ":" + strconv.FormatInt(r.n, 10)
	case r.kind == replyBulk:
		return fmt.Sprintf("$%q", r.bulk)
	case r.kind == replyArray:
		return fmt.Sprintf("*%d", len(r.items))
	default:
		return string(rune(r.kind)) + r.text
	}
}

type respReader struct {
	br *bufio.Reader
}

func (r *respReader) read() (reply, error) {
	kind, err := r.br.ReadByte()
	if err != nil {
		return reply{}, err
	}
	line, err := r.line()
	if err != nil {
		return reply{}, err
	}

	out := reply{kind: replyKind(kind)}
	switch out.kind {
	case replyStatus, replyError:
		out.text = line
	case replyInt:
		if out.n, err = strconv.ParseInt(line, 10, 64); err != nil {
			return reply{}, fmt.Errorf("redis: bad integer %q", line)
		}
	case replyBulk:
		size, err := strconv.Atoi(line)
		if err != nil {
			return reply{}, fmt.Errorf("redis: bad bulk length %q", line)
		}
		if size < 0 {
			out.null = true
			return out, nil
		}
		data := make([]byte, size+2)
		if _, err := io.ReadFull(r.br, data); err != nil {
			return reply{}, err
		}
		if data[size] != '\r' || data[size+1] != '\n' {
			return reply{}, errors.New("redis: bulk string missing CRLF")
		}
		out.bulk = data[:size]
	case replyArray:
		count, err := strconv.Atoi(line)
		if err != nil {
			return reply{}, fmt.Errorf("redis: bad array length %q", line)
		}
		if count < 0 {
			out.null = true
			return out, nil
		}
		out.items = make([]reply, count)
		for i := range out.items {
			if out.items[i], err = r.read(); err != nil {
				return reply{}, err
			}
		}
	default:
		return reply{}, fmt.Errorf("redis: unexpected reply type %q", kind)
	}
	return out, nil
}

func (r *respReader) line() (string, error) {
	s, err := r.br.ReadString('\n')
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(s, "\r\n") {
		return "", errors.New("redis: line missing CRLF")
	}
	return s[:len(s)-2], nil
}
