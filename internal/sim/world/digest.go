package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// digest hashes the observable world state in a fixed order. Two runs from
// the same seed and the same edit sequence must produce identical digests
// every tick; any divergence is a determinism bug.
func (w *World) digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "tick=%d\n", w.tick)

	for _, a := range w.SortedAgents() {
		taskID, kind, target := "", "", ""
		if a.Task != nil {
			taskID = a.Task.TaskID
			kind = string(a.Task.Kind)
			target = a.Task.Target.ID
		}
		fmt.Fprintf(h, "agent %s pos=%.4f,%.4f hp=%.2f rest=%.4f task=%s/%s/%s carry=%s down=%t sleep=%t\n",
			a.ID, a.Pos.X, a.Pos.Y, a.Health, a.Rest, taskID, kind, target, a.Carrying, a.Downed, a.Sleeping)
	}

	bids := make([]string, 0, len(w.buildings))
	for id := range w.buildings {
		bids = append(bids, id)
	}
	sort.Strings(bids)
	for _, id := range bids {
		b := w.buildings[id]
		fmt.Fprintf(h, "building %s kind=%s pos=%d,%d complete=%t work=%.2f hp=%.2f\n",
			id, b.Kind, b.Pos.X, b.Pos.Y, b.Complete, b.WorkLeft, b.HP)
	}

	rids := make([]string, 0, len(w.resources))
	for id := range w.resources {
		rids = append(rids, id)
	}
	sort.Strings(rids)
	for _, id := range rids {
		r := w.resources[id]
		fmt.Fprintf(h, "resource %s kind=%s pos=%d,%d amount=%d marked=%t\n",
			id, r.Kind, r.Pos.X, r.Pos.Y, r.Amount, r.Marked)
	}

	for _, d := range w.doors.SortedDoors() {
		fmt.Fprintf(h, "door %s pos=%d,%d open=%.2f held=%t queue=%d\n",
			d.ID, d.Pos.X, d.Pos.Y, d.Open, d.HoldClosed, d.QueueLen())
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Digest exposes the current state hash for observers and tests.
func (w *World) Digest() string { return w.digest() }
