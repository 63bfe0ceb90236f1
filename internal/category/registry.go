// Package category manages the ordered, user-editable list of capture
// categories.
package category

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shipcam/shipcam/internal/model"
	"github.com/shipcam/shipcam/internal/store"
	"github.com/shipcam/shipcam/internal/validation"
)

// SettingsKey is the settings entry holding the JSON category list.
const SettingsKey = "photo_categories"

var defaults = []model.Category{
	{ID: "conversion_frame", Name: "轉換膠框", NameEn: "Conversion Frame", HasChoice: true},
	{ID: "box", Name: "盒子", NameEn: "Box"},
	{ID: "sponge", Name: "海綿", NameEn: "Sponge"},
	{ID: "tyvek_paper", Name: "泰維克紙", NameEn: "Tyvek Paper"},
	{ID: "bag", Name: "袋子", NameEn: "Bag"},
	{ID: "box_label", Name: "盒子標籤", NameEn: "Box Label"},
	{ID: "outer_bag_label", Name: "外袋標籤", NameEn: "Outer Bag Label"},
	{ID: "outer_box_label", Name: "外箱標籤", NameEn: "Outer Box Label"},
}

// Defaults returns a copy of the built-in category set.
func Defaults() []model.Category {
	return append([]model.Category(nil), defaults...)
}

type input struct {
	Name   string `json:"name" validate:"required"`
	NameEn string `json:"nameEn" validate:"required"`
}

// Registry reads and writes the category list through a settings store.
type Registry struct {
	settings store.Settings
	log      *slog.Logger

	mu      sync.Mutex
	entropy *rand.Rand
	now     func() time.Time
}

// NewRegistry creates a Registry backed by settings.
func NewRegistry(settings store.Settings, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		settings: settings,
		log:      log,
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

func (r *Registry) newID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return "cat_" + strings.ToLower(ulid.MustNew(ulid.Timestamp(r.now()), r.entropy).String())
}

// List returns the persisted categories, or the defaults when nothing usable
// is stored. The result is never empty.
func (r *Registry) List(ctx context.Context) ([]model.Category, error) {
	raw, ok, err := r.settings.GetSetting(ctx, SettingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Defaults(), nil
	}

	var cats []model.Category
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		r.log.Warn("stored categories unreadable, using defaults", "err", err)
		return Defaults(), nil
	}
	if len(cats) == 0 {
		return Defaults(), nil
	}
	return cats, nil
}

func (r *Registry) save(ctx context.Context, cats []model.Category) error {
	b, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	return r.settings.PutSetting(ctx, SettingsKey, string(b))
}

// Add appends a new category with a fresh time-ordered id.
func (r *Registry) Add(ctx context.Context, name, nameEn string, hasChoice bool) ([]model.Category, error) {
	in := input{Name: strings.TrimSpace(name), NameEn: strings.TrimSpace(nameEn)}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	c := model.Category{ID: r.newID(), Name: in.Name, NameEn: in.NameEn, HasChoice: hasChoice}
	cats = append(cats, c)
	if err := r.save(ctx, cats); err != nil {
		return nil, err
	}
	r.log.Info("category added", "id", c.ID, "name", c.Label())
	return cats, nil
}

// Update edits a category in place. Blank names keep their previous value.
// Unknown ids are a no-op.
func (r *Registry) Update(ctx context.Context, id, name, nameEn string, hasChoice bool) ([]model.Category, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	i := model.FindCategory(cats, id)
	if i < 0 {
		return cats, nil
	}

	c := cats[i]
	if v := strings.TrimSpace(name); v != "" {
		c.Name = v
	}
	if v := strings.TrimSpace(nameEn); v != "" {
		c.NameEn = v
	}
	c.HasChoice = hasChoice
	cats[i] = c

	if err := r.save(ctx, cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Remove deletes a category. Records referencing it keep their photos.
// Unknown ids are a no-op.
func (r *Registry) Remove(ctx context.Context, id string) ([]model.Category, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	i := model.FindCategory(cats, id)
	if i < 0 {
		return cats, nil
	}

	cats = append(cats[:i], cats[i+1:]...)
	if err := r.save(ctx, cats); err != nil {
		return nil, err
	}
	r.log.Info("category removed", "id", id)
	if len(cats) == 0 {
		return Defaults(), nil
	}
	return cats, nil
}

// ResetToDefault discards all customizations.
func (r *Registry) ResetToDefault(ctx context.Context) ([]model.Category, error) {
	cats := Defaults()
	if err := r.save(ctx, cats); err != nil {
		return nil, err
	}
	r.log.Info("categories reset to defaults")
	return cats, nil
}
