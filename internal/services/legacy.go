package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/normalize"
	"github.com/yukikurage/release-planner/internal/repository"
	"github.com/yukikurage/release-planner/internal/utils"
)

// LegacyCollections are the collections ImportLegacy accepts.
var LegacyCollections = []string{
	repository.TableTasks,
	repository.TableKPIs,
	repository.TableLaunches,
	repository.TablePublications,
	repository.TableIdeas,
	repository.TableParticipants,
	repository.TablePerspectives,
}

// ImportLegacy normalizes a JSON array exported from an older version and
// caches it as a pending snapshot. The next start against a remote store
// uploads it; in local-only mode it is served as is. Records without an
// id get one.
func ImportLegacy(ctx context.Context, snaps *cache.Store, collection string, data []byte) (int, error) {
	var items any
	var n int

	if collection == repository.TablePerspectives {
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return 0, invalid("failed to decode perspectives: %v", err)
		}
		out := make([]models.Perspective, 0, len(raw))
		for _, v := range raw {
			p := normalize.Perspective(v)
			if p.Name == "" {
				continue
			}
			p.ID = utils.EnsureID(p.ID)
			out = append(out, p)
		}
		items, n = out, len(out)
	} else {
		recs, err := normalize.Records(data)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		switch collection {
		case repository.TableTasks:
			items, n = convertLegacy(recs, normalize.Task, func(t *models.Task) {
				t.ID = utils.EnsureID(t.ID)
			})
		case repository.TableKPIs:
			items, n = convertLegacy(recs, normalize.KPI, func(k *models.KPI) {
				k.ID = utils.EnsureID(k.ID)
			})
		case repository.TableLaunches:
			items, n = convertLegacy(recs, normalize.Launch, func(l *models.Launch) {
				l.ID = utils.EnsureID(l.ID)
				for i := range l.Actions {
					l.Actions[i].ID = utils.EnsureID(l.Actions[i].ID)
				}
			})
		case repository.TablePublications:
			items, n = convertLegacy(recs, normalize.Publication, func(p *models.Publication) {
				p.ID = utils.EnsureID(p.ID)
			})
		case repository.TableIdeas:
			items, n = convertLegacy(recs, normalize.Idea, func(i *models.Idea) {
				i.ID = utils.EnsureID(i.ID)
				if i.Evaluation != nil {
					applyEvaluation(i, *i.Evaluation)
				}
			})
		case repository.TableParticipants:
			items, n = convertLegacy(recs, normalize.Participant, func(p *models.Participant) {
				p.ID = utils.EnsureID(p.ID)
			})
		default:
			return 0, invalid("unknown collection %q", collection)
		}
	}

	if err := snaps.SaveLegacy(ctx, collection, items); err != nil {
		return 0, err
	}
	return n, nil
}

func convertLegacy[T any](recs []normalize.Record, fn func(normalize.Record) T, fix func(*T)) ([]T, int) {
	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = fn(r)
		fix(&out[i])
	}
	return out, len(out)
}
