// Package redistest implements support code for testing with Redis.
package redistest

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redis"
)

// RedisCredentials holds the credentials for connecting to Redis.
type RedisCredentials struct {
	Username string
	Password string
	IP       string
	DB       int
}

// GetCredentials gets the Redis credentials from environment variables.
func GetCredentials() (rc RedisCredentials, ok bool) {
	u := os.Getenv("REDIS_USER")
	p := os.Getenv("REDIS_PASS")
	i := os.Getenv("REDIS_IP")
	db, _ := strconv.Atoi(os.Getenv("REDIS_TEST_DB"))
	if len(i) > 0 {
		return RedisCredentials{
			Username: u,
			Password: p,
			IP:       i,
			DB:       db,
		}, true
	}
	return RedisCredentials{}, false
}

// Connect connects to Redis and returns the Client object.
//
// The test is skipped when no Redis server is configured or reachable.
func Connect(t *testing.T) *redis.Client {
	creds, ok := GetCredentials()
	if !ok {
		t.Skip("Missing Redis credentials")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         creds.IP,
		Password:     creds.Password,
		DB:           creds.DB,
		MaxRetries:   3,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis unavailable: %s", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
