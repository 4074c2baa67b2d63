package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/api"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/config"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/live"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/notify"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/queries"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/session"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/viewed"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// A missing config file is fine, defaults apply.
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		cfg = config.Default()
	}

	setupLogger(cfg.Log.Level)

	client := api.NewClient(cfg.Backend.URL, cfg.Backend.RequestTimeout.Std())
	store := cache.NewStore(cfg.Cache.Retention.Std())
	sess := session.NewManager()

	token := readToken(cfg.Auth.TokenFile)
	if token != "" {
		if err := sess.Restore(token); err != nil {
			log.Warn().Err(err).Msg("Stored session token is unusable, continuing anonymously")
		} else {
			client.SetSessionToken(token)
			log.Info().Str("user", sess.Identity().String()).Msg("Session restored")
		}
	}

	viewedSet, err := viewed.Open(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open viewed posts store")
	}

	service := queries.NewService(client, store, sess, notify.NewLogNotifier(), viewedSet)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sess.IsAuthenticated() {
		listener, err := live.NewListener(cfg.Backend.URL, sess.Token(), store)
		if err != nil {
			log.Warn().Err(err).Msg("Live updates unavailable")
		} else {
			go listener.Run(ctx)
		}
	}

	boot := service.Bootstrap(ctx)
	if boot.TimedOut {
		log.Warn().Msg("Profile load timed out, starting with degraded session")
	}
	if boot.NeedsSetup {
		log.Info().Msg("Profile is empty, run 'profile init' to complete setup")
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"feed"}
	}

	if err := dispatch(ctx, service, args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func dispatch(ctx context.Context, service *queries.Service, args []string) error {
	switch args[0] {
	case "feed":
		posts, err := service.Feed().Get(ctx)
		if err != nil {
			return err
		}
		return printJSON(service.SortPosts(posts, queries.SortNewest))

	case "profile":
		if len(args) > 1 && args[1] == "init" {
			_, err := service.InitializeProfile().Run(ctx, queries.None{})
			return err
		}
		profile, err := service.CallerProfile().Get(ctx)
		if err != nil {
			return err
		}
		return printJSON(profile)

	case "coaches":
		profiles, err := service.AllProfiles().Get(ctx)
		if err != nil {
			return err
		}
		if count, err := service.CoachCount().Get(ctx); err == nil {
			fmt.Fprintf(os.Stderr, "%d coaches registered\n", count)
		}
		return printJSON(profiles)

	case "jobs":
		jobs, err := service.JobPostings().Get(ctx)
		if err != nil {
			return err
		}
		return printJSON(jobs)

	case "applications":
		apps, err := service.MyApplications().Get(ctx)
		if err != nil {
			return err
		}
		return printJSON(apps)

	case "messages":
		if len(args) < 2 {
			return fmt.Errorf("usage: messages <user>")
		}
		msgs, err := service.DirectMessages(models.Principal(args[1])).Get(ctx)
		if err != nil {
			return err
		}
		return printJSON(msgs)

	case "follow":
		if len(args) < 2 {
			return fmt.Errorf("usage: follow <coach>")
		}
		_, err := service.FollowCoach().Run(ctx, models.Principal(args[1]))
		return err

	case "watch":
		// Keeps the banner flag and feed warm until interrupted.
		stopPoll := service.HasNewBanner().Poll(ctx, queries.BannerPollInterval)
		defer stopPoll()
		release := service.Feed().Bind(ctx)
		defer release()
		<-ctx.Done()
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readToken(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
