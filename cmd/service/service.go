// Command service serves counted, cached resource fetches over HTTP.
package main

import (
	"context"
	"net"
	gohttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rwool/pagecache/pkg/endpoint"
	"github.com/rwool/pagecache/pkg/http"
	"github.com/rwool/pagecache/pkg/service"
	"github.com/rwool/pagecache/pkg/service/keyvalue"
	"github.com/rwool/pagecache/pkg/service/resource"
)

const (
	defaultListenAddress = "0.0.0.0:8080"
	defaultFetchTimeout  = 10 * time.Second
)

var errInterrupted = errors.New("interrupted")

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getRedisClient() (*redis.Client, error) {
	address, ok := os.LookupEnv("REDIS_ADDRESS")
	if !ok {
		return nil, errors.New("missing Redis address")
	}
	db, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid REDIS_DB")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           db,
		MaxRetries:   0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return client, nil
}

// Config contains all of the configuration for running the service.
type Config struct {
	Log           log.Logger
	KeyVal        keyvalue.KeyValue
	Fetcher       resource.Fetcher
	ListenAddress string
	FlushOnStart  bool
}

func loadConfig(l log.Logger) (Config, error) {
	timeout, err := time.ParseDuration(getenv("FETCH_TIMEOUT", defaultFetchTimeout.String()))
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid FETCH_TIMEOUT")
	}
	flush, err := strconv.ParseBool(getenv("FLUSH_ON_START", "true"))
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid FLUSH_ON_START")
	}

	rc, err := getRedisClient()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Log:           l,
		KeyVal:        keyvalue.NewRedisAdapter(rc),
		Fetcher:       resource.NewHTTPAdapter(&gohttp.Client{Timeout: timeout}),
		ListenAddress: getenv("LISTEN_ADDRESS", defaultListenAddress),
		FlushOnStart:  flush,
	}, nil
}

func main() {
	l := log.NewJSONLogger(os.Stderr)
	l = log.With(l, "ts", log.DefaultTimestampUTC)

	conf, err := loadConfig(l)
	if err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", err)
		os.Exit(1)
	}
	if err := run(conf); err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", err)
		os.Exit(1)
	}
}

func run(conf Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start from an empty namespace so counts describe this run only.
	if conf.FlushOnStart {
		if err := service.NewExpiringCache(conf.KeyVal).Flush(ctx); err != nil {
			return errors.Wrap(err, "unable to flush store")
		}
		_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", "Flushed key value store")
	}

	// Business logic.
	fetchService := service.NewFetchService(service.FetchServiceConfig{
		KeyVal:  conf.KeyVal,
		Fetcher: conf.Fetcher,
		Log:     conf.Log,
	})

	// Endpoints and transport.
	httpHandler := http.NewAPIHTTPHandler(endpoint.MakeEndpoints(fetchService), nil)

	server, err := serveHTTP(conf.ListenAddress, httpHandler)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server(ctx, conf.Log)
	})
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case s := <-sig:
			_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", "Shutting down", "signal", s.String())
			return errInterrupted
		case <-ctx.Done():
			return nil
		}
	})
	err = group.Wait()
	if errors.Cause(err) == errInterrupted {
		return nil
	}
	return err
}

func serveHTTP(address string, h gohttp.Handler) (func(context.Context, log.Logger) error, error) {
	// Separate listening and serving to capture listen errors.
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create TCP listener")
	}

	return func(ctx context.Context, logger log.Logger) error {
		srv := &gohttp.Server{Handler: h}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = logger.Log("LEVEL", "WARN", "MESSAGE", err)
			}
		}()
		_ = logger.Log("LEVEL", "INFO", "MESSAGE", "Listening", "address", l.Addr().String())
		err := srv.Serve(l)
		if err == gohttp.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "HTTP server stopped")
	}, nil
}
