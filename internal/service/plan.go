package service

import (
	"sort"

	"github.com/zzenonn/framesync/internal/domain"
)

// BuildSyncPlan diffs the local index against the remote manifest. Assets that
// are only present locally, or whose hash no longer matches, go in the delete
// set; assets only present remotely, or with a changed hash, go in the
// download set. The function has no side effects and both sets come back
// sorted by id so plans apply in a stable order.
func BuildSyncPlan(local, remote domain.Manifest) domain.SyncPlan {
	var plan domain.SyncPlan

	for id, hash := range local {
		if remoteHash, ok := remote[id]; !ok || remoteHash != hash {
			plan.Delete = append(plan.Delete, domain.AssetRecord{ID: id, Hash: hash})
		}
	}

	for id, hash := range remote {
		if localHash, ok := local[id]; !ok || localHash != hash {
			plan.Download = append(plan.Download, domain.AssetRecord{ID: id, Hash: hash})
		}
	}

	sort.Slice(plan.Delete, func(i, j int) bool {
		return plan.Delete[i].ID < plan.Delete[j].ID
	})
	sort.Slice(plan.Download, func(i, j int) bool {
		return plan.Download[i].ID < plan.Download[j].ID
	})

	return plan
}
