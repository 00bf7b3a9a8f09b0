package storescreen

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/ui/notifier"
	"github.com/leapstack-labs/difftable/pkg/section"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	sessionName = "difftable"
	selectedKey = "selected"
	summaryKey  = "selected_summary"
)

// Handlers provides HTTP handlers for the store screen.
type Handlers struct {
	screen       *Screen
	sessionStore sessions.Store
	notifier     *notifier.Notifier[Event]
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(screen *Screen, sessionStore sessions.Store) *Handlers {
	return &Handlers{
		screen:       screen,
		sessionStore: sessionStore,
		notifier:     screen.Notifier(),
	}
}

// HandlePage renders the store screen with the list already in place.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	selected, summary := h.selection(r)

	html, _, err := h.screen.RenderList(r.Context(), selected)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := "tap a row to select it"
	if summary != "" {
		status = "selected " + summary
	}
	if err := Page(h.screen.Title(), templ.Raw(html), status, selected).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleUpdates is the long-lived SSE endpoint of the list. It re-renders
// the list once on connect, then forwards row patches. A missed event
// triggers a full re-render. The selection highlight is left to the
// selected signal.
func (h *Handlers) HandleUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	// Subscribe before rendering so no event falls in between.
	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	last, err := h.sendList(sse, r)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if ev.Seq <= last {
				continue
			}
			if ev.Reload || ev.Seq != last+1 {
				if last, err = h.sendList(sse, r); err != nil {
					_ = sse.ConsoleError(err)
				}
				continue
			}
			if err := sendPatches(sse, ev.Patches); err != nil {
				_ = sse.ConsoleError(err)
				// Resynchronise on the next event.
				last = 0
				continue
			}
			last = ev.Seq
		}
	}
}

func (h *Handlers) sendList(sse *datastar.ServerSentEventGenerator, r *http.Request) (uint64, error) {
	html, seq, err := h.screen.RenderList(r.Context(), "")
	if err != nil {
		return 0, err
	}
	return seq, sse.PatchElements(html)
}

func sendPatches(sse *datastar.ServerSentEventGenerator, patches []Patch) error {
	for _, p := range patches {
		var err error
		switch p.Op {
		case PatchRemove:
			err = sse.RemoveElement("#" + p.Target)
		case PatchReplace:
			err = sse.PatchElements(p.HTML, datastar.WithSelectorID(p.Target), datastar.WithMode(datastar.ElementPatchModeOuter))
		case PatchAfter:
			err = sse.PatchElements(p.HTML, datastar.WithSelectorID(p.Target), datastar.WithMode(datastar.ElementPatchModeAfter))
		case PatchPrepend:
			err = sse.PatchElements(p.HTML, datastar.WithSelectorID(p.Target), datastar.WithMode(datastar.ElementPatchModePrepend))
		default:
			err = fmt.Errorf("unknown patch %s", p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// HandleAdd inserts a random credit card.
func (h *Handlers) HandleAdd(w http.ResponseWriter, r *http.Request) {
	card, err := h.screen.AddCard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.sendStatus(w, r, "added "+store.Describe(card))
}

// HandleRemove removes a random item.
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	removed, err := h.screen.RemoveRandom(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if removed == nil {
		h.sendStatus(w, r, "nothing to remove")
		return
	}
	h.sendStatus(w, r, "removed "+store.Describe(removed))
}

// HandleSelect selects the row at /rows/{section}/{row}/select, stores
// the selection in the session and moves the selected signal to its row.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	sec, errS := strconv.Atoi(chi.URLParam(r, "section"))
	row, errR := strconv.Atoi(chi.URLParam(r, "row"))
	if errS != nil || errR != nil {
		http.Error(w, "invalid row address", http.StatusBadRequest)
		return
	}

	item, err := h.screen.Select(r.Context(), section.IndexPath{Section: sec, Row: row})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, section.ErrIndexOutOfRange) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	summary := store.Describe(item)
	if session, err := h.sessionStore.Get(r, sessionName); err == nil {
		session.Values[selectedKey] = item.DiffIdentifier()
		session.Values[summaryKey] = summary
		if err := session.Save(r, w); err != nil {
			h.screen.logger.Warn("failed to save session", "error", err)
		}
	}
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(Status("selected " + summary)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.MarshalAndPatchSignals(map[string]any{"selected": RowID(item.DiffIdentifier())}); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) sendStatus(w http.ResponseWriter, r *http.Request, text string) {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(Status(text)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// selection returns the selected row key and summary from the session.
func (h *Handlers) selection(r *http.Request) (key, summary string) {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return "", ""
	}
	key, _ = session.Values[selectedKey].(string)
	summary, _ = session.Values[summaryKey].(string)
	return key, summary
}
