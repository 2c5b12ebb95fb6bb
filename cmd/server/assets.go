package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zzenonn/framesync/internal/domain"
	apperrors "github.com/zzenonn/framesync/internal/errors"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Catalog content commands",
	Long:  "Add, list, and remove the images the catalog serves",
}

var assetsAddCmd = &cobra.Command{
	Use:   "add [image-path]",
	Short: "Add an image to the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		imagePath := args[0]

		f, err := os.Open(imagePath)
		if err != nil {
			fmt.Printf("Error opening file: %v\n", err)
			return
		}
		defer f.Close()

		digest := md5.New()
		if _, err := io.Copy(digest, f); err != nil {
			fmt.Printf("Error hashing file: %v\n", err)
			return
		}
		hash, err := domain.ParseContentHash(hex.EncodeToString(digest.Sum(nil)))
		if err != nil {
			fmt.Printf("Error hashing file: %v\n", err)
			return
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			fmt.Printf("Error rewinding file: %v\n", err)
			return
		}

		if err := store.EnsureRoot(); err != nil {
			fmt.Printf("Error preparing asset root: %v\n", err)
			return
		}

		id := domain.AssetID(uuid.NewString())
		written, err := store.Write(id, hash, f)
		if err != nil {
			fmt.Printf("Error storing image: %v\n", err)
			return
		}
		fmt.Printf("Added %s as %s (%d bytes)\n", imagePath, id, written)
	},
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the images the catalog serves",
	Run: func(cmd *cobra.Command, args []string) {
		index := store.Index()
		ids := make([]domain.AssetID, 0, len(index))
		for id := range index {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			fmt.Printf("%s %s\n", id, index[id])
		}
		fmt.Printf("%d assets served from %s\n", len(index), store.Root())
	},
}

var assetsRemoveCmd = &cobra.Command{
	Use:   "remove [asset-id]",
	Short: "Remove an image from the catalog",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := domain.ParseAssetID(args[0])
		if err != nil {
			fmt.Printf("Error removing asset: %v\n", err)
			return
		}

		hash, ok := store.Index()[id]
		if !ok {
			fmt.Printf("Error removing asset: %v\n", apperrors.FetchingResourceError("asset"))
			return
		}

		if err := store.Remove(id, hash); err != nil {
			fmt.Printf("Error removing asset: %v\n", err)
			return
		}
		fmt.Printf("Asset removed successfully: %s\n", id)
	},
}

func init() {
	assetsCmd.AddCommand(assetsAddCmd)
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsRemoveCmd)
	rootCmd.AddCommand(assetsCmd)
}
