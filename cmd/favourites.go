package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spigell/vkinder/internal/lists"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var favouritesCmd = &cobra.Command{
	Use:   "favourites",
	Short: "Show or edit saved favourites and the blacklist",
	Run: func(cmd *cobra.Command, _ []string) {
		favourites(cmd)
	},
}

func init() {
	rootCmd.AddCommand(favouritesCmd)
	addFavouritesFlags(favouritesCmd)
}

func addFavouritesFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("blacklist", "b", false, "work with the blacklist instead of favourites")
	cmd.Flags().Int64("remove", 0, "remove the user with this id from the list")
}

// listRequest is what the favourites command was asked to do.
type listRequest struct {
	kind   lists.Kind
	remove int64
}

func listRequestFrom(cmd *cobra.Command) (*listRequest, error) {
	blacklist, err := cmd.Flags().GetBool("blacklist")
	if err != nil {
		return nil, err
	}
	remove, err := cmd.Flags().GetInt64("remove")
	if err != nil {
		return nil, err
	}
	if remove < 0 {
		return nil, fmt.Errorf("invalid user id %d", remove)
	}

	req := &listRequest{kind: lists.Favourites, remove: remove}
	if blacklist {
		req.kind = lists.Blacklist
	}
	return req, nil
}

// resolveRequester returns the configured requester id or asks VK for the token owner.
func resolveRequester(ctx context.Context, config *Config, owner func(context.Context) (int64, error)) (int64, error) {
	if config.RequesterID != 0 {
		return config.RequesterID, nil
	}
	id, err := owner(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting token owner: %w", err)
	}
	if id == 0 {
		return 0, errors.New("token owner has no id")
	}
	return id, nil
}

// manageList lists or edits one list of the requester in the lists file.
func manageList(path string, requesterID int64, req *listRequest, logger *zap.Logger) error {
	stored, err := lists.FromFile(path)
	if err != nil {
		return fmt.Errorf("reading lists file: %w", err)
	}

	if req.remove != 0 {
		if !stored.Remove(requesterID, req.kind, req.remove) {
			logger.Info("user is not on the list", zap.String("list", string(req.kind)), zap.Int64("user_id", req.remove))
			return nil
		}
		if err := stored.ToFile(path); err != nil {
			return fmt.Errorf("saving lists file: %w", err)
		}
		logger.Info("removed from the list", zap.String("list", string(req.kind)), zap.Int64("user_id", req.remove))
		return nil
	}

	entries := stored.Entries(requesterID, req.kind)
	logger.Info("list", zap.String("list", string(req.kind)), zap.Int("count", len(entries)))
	for _, e := range entries {
		logger.Info(e.Name,
			zap.String("url", e.URL),
			zap.Time("added_at", e.AddedAt),
		)
	}
	return nil
}

func favourites(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	req, err := listRequestFrom(cmd)
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	requesterID, err := resolveRequester(ctx, config, func(ctx context.Context) (int64, error) {
		owner, err := newClient(config, logger).GetUser(ctx, 0)
		if err != nil {
			return 0, err
		}
		return owner.ID, nil
	})
	if err != nil {
		logger.Fatal("resolving requester", zap.Error(err))
	}

	if err := manageList(config.ListsFile, requesterID, req, logger); err != nil {
		logger.Fatal("managing list", zap.Error(err), zap.String("path", config.ListsFile))
	}
}
