package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zzenonn/framesync/internal/domain"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Local asset storage commands",
	Long:  "Inspect and clean the local content addressed image tree",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally stored assets",
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
		fmt.Printf("%d assets stored under %s\n", len(index), store.Root())
	},
}

var assetsGcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete files that don't belong in the asset tree",
	Run: func(cmd *cobra.Command, args []string) {
		kept := 0
		for range store.Scan(true) {
			kept++
		}
		fmt.Printf("Cleaned %s, %d assets kept\n", store.Root(), kept)
	},
}

var assetsFreeCmd = &cobra.Command{
	Use:   "free",
	Short: "Show free space on the asset filesystem",
	Run: func(cmd *cobra.Command, args []string) {
		free, err := store.FreeBytes()
		if err != nil {
			fmt.Printf("Failed to read free space: %v\n", err)
			return
		}
		fmt.Printf("%d bytes free on the filesystem holding %s\n", free, store.Root())
	},
}

func init() {
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsGcCmd)
	assetsCmd.AddCommand(assetsFreeCmd)
	rootCmd.AddCommand(assetsCmd)
}
