package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/workflow"
)

type slotView struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	State   string `json:"state"`
	Photos  int    `json:"photos"`
	Current bool   `json:"current,omitempty"`
}

type statusView struct {
	Session     string         `json:"session"`
	Phase       workflow.Phase `json:"phase"`
	Step        int            `json:"step"`
	Total       int            `json:"total"`
	Category    string         `json:"category"`
	NeedsChoice bool           `json:"needsChoice"`
	Form        workflow.Form  `json:"form"`
	PhotoCount  int            `json:"photoCount"`
	Slots       []slotView     `json:"slots"`
}

func newStatusView(st workflow.State) statusView {
	v := statusView{
		Session:     st.SessionID,
		Phase:       st.Phase,
		Step:        st.Step + 1,
		Total:       len(st.Categories),
		Category:    st.Current().Label(),
		NeedsChoice: st.NeedsChoice(),
		Form:        st.Form,
		PhotoCount:  st.PhotoCount(),
	}
	for i, c := range st.Categories {
		slot := st.Slot(c.ID)
		v.Slots = append(v.Slots, slotView{
			ID:      c.ID,
			Label:   c.Label(),
			State:   slot.State.String(),
			Photos:  len(slot.Photos),
			Current: !st.Completed() && i == st.Step,
		})
	}
	return v
}

func printStatus(cmd *cobra.Command, st workflow.State) {
	v := newStatusView(st)
	if jsonOutput() {
		printJSON(cmd.OutOrStdout(), v)
		return
	}
	writeStatus(cmd.OutOrStdout(), v)
}

func writeStatus(w io.Writer, v statusView) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s → %s  %s\n", bold(v.Form.Customer), bold(v.Form.Destination), v.Form.Date)

	if v.Phase == workflow.PhaseCompleted {
		fmt.Fprintf(w, "%s %d photos, run `shipcam capture commit` to save\n", color.GreenString("completed:"), v.PhotoCount)
	} else {
		fmt.Fprintf(w, "step %d/%d: %s\n", v.Step, v.Total, color.CyanString(v.Category))
	}

	for _, s := range v.Slots {
		marker := " "
		if s.Current {
			marker = color.CyanString("▸")
		}
		fmt.Fprintf(w, "%s %-28s %s\n", marker, s.Label, slotSummary(s))
	}

	if v.NeedsChoice {
		fmt.Fprintln(w, color.YellowString("answer with `shipcam capture choose yes|no`"))
	}
}

func slotSummary(s slotView) string {
	switch s.State {
	case model.SlotSkipped.String():
		return color.New(color.Faint).Sprint("skipped")
	case model.SlotPhotos.String():
		return fmt.Sprintf("%d photos", s.Photos)
	default:
		return "-"
	}
}

// recordSummary is a record without photo payloads.
type recordSummary struct {
	ID          int64          `json:"id"`
	Date        string         `json:"date"`
	Customer    string         `json:"customer"`
	Destination string         `json:"destination"`
	Notes       string         `json:"notes,omitempty"`
	Photos      int            `json:"photos"`
	HasPhoto    bool           `json:"hasPhoto"`
	FirstPhoto  string         `json:"firstPhoto,omitempty"`
	Slots       map[string]int `json:"slots,omitempty"`
	Skipped     []string       `json:"skipped,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func newRecordSummary(r model.Record, withSlots bool) recordSummary {
	sum := recordSummary{
		ID:          r.ID,
		Date:        r.Date,
		Customer:    r.Customer,
		Destination: r.Destination,
		Notes:       r.Notes,
		Photos:      r.PhotoCount(),
		CreatedAt:   r.CreatedAt,
	}
	sum.FirstPhoto = firstPhotoFile(r)
	sum.HasPhoto = sum.FirstPhoto != ""
	if !withSlots {
		return sum
	}
	sum.Slots = map[string]int{}
	for id, slot := range r.Photos {
		switch slot.State {
		case model.SlotSkipped:
			sum.Skipped = append(sum.Skipped, id)
		case model.SlotPhotos:
			sum.Slots[id] = len(slot.Photos)
		}
	}
	sort.Strings(sum.Skipped)
	return sum
}

// firstPhotoFile names the first file `records photos` would write for r,
// or "" when r has no photos.
func firstPhotoFile(r model.Record) string {
	for _, cat := range sortedSlotIDs(r) {
		if model.ValidCategoryID(cat) && len(r.Photos[cat].Photos) > 0 {
			return photoFileName(r.ID, cat, 0)
		}
	}
	return ""
}
