package main

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/formflow-go/formflow"
	"github.com/formflow-go/formflow/internal/logging"
	"github.com/formflow-go/formflow/pkg/adapters/memory"
	"github.com/formflow-go/formflow/pkg/adapters/redis"
	"github.com/formflow-go/formflow/pkg/domain"
	"github.com/formflow-go/formflow/pkg/observability"
)

// newApp builds the App from the persistent flags, with optional extra
// lifecycle hooks.
func newApp(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*formflow.App, error) {
	dir, _ := cmd.Flags().GetString("dir")
	levelName, _ := cmd.Flags().GetString("log-level")
	store, _ := cmd.Flags().GetString("store")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	logger := logging.New(logging.ParseLevel(levelName))

	opts := []formflow.Option{
		formflow.WithBasePath(dir),
		formflow.WithLogger(logger),
	}
	if len(hooks) > 0 {
		opts = append(opts, formflow.WithLifecycleHooks(observability.Merge(hooks...)))
	}

	switch store {
	case "file":
		// The App's default stores already live under the base path.
	case "memory":
		opts = append(opts,
			formflow.WithFlowStore(memory.NewFlowStore()),
			formflow.WithSessionStore(memory.NewSessionStore()),
		)
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
		opts = append(opts,
			formflow.WithFlowStore(redis.NewFlowStore(client)),
			formflow.WithSessionStore(redis.NewSessionStore(client)),
			formflow.WithLocker(redis.NewLocker(client, "formflow:lock:")),
		)
	default:
		return nil, fmt.Errorf("unknown store %q, supported: file, memory, redis", store)
	}

	return formflow.New(opts...)
}
