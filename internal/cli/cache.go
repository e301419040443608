package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanebook/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cachePruneCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached document and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.noCache {
				printInfo("Caching is disabled")
				return nil
			}
			if c.redisAddr == "" {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			ch, err := c.newCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()
			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache backend %T cannot be cleared", ch)
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared cache")
			printDetail("Location: %s", c.cacheLocation())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := c.cacheLocation()
			if loc == "" {
				return fmt.Errorf("cannot determine cache directory")
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}

// pruner is implemented by backends that can drop expired entries in bulk.
type pruner interface {
	Prune(ctx context.Context) (int64, error)
}

func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.newCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()
			p, ok := ch.(pruner)
			if !ok {
				printInfo("The %s backend expires entries on read", c.backendName())
				return nil
			}
			n, err := p.Prune(ctx)
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			printSuccess("Pruned %d expired entries", n)
			return nil
		},
	}
}

func (c *CLI) backendName() string {
	switch {
	case c.noCache:
		return "null"
	case c.redisAddr != "":
		return "redis"
	case c.cacheBackend == "":
		return backendFile
	default:
		return c.cacheBackend
	}
}

// cacheLocation is where the cache lives: a directory, a SQLite file, or
// redis://addr.
func (c *CLI) cacheLocation() string {
	if c.redisAddr != "" {
		return "redis://" + c.redisAddr
	}
	dir, err := cacheDir()
	if err != nil {
		return ""
	}
	if c.cacheBackend == backendSQLite {
		return filepath.Join(dir, "cache.db")
	}
	return dir
}
