package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/messages"
	"github.com/cbodonnell/cardbridge/pkg/repositories"
	"github.com/cbodonnell/cardbridge/pkg/repositories/models"
	"github.com/gorilla/mux"
)

// Dispatcher handles one command at a time.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd commands.Command) commands.Response
}

const defaultJournalLimit = 50

// HandleCommand decodes a JSON command from the request body and
// dispatches it. Command failures are reported in the body with status 200;
// only an undecodable body is rejected with 400.
func HandleCommand(dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := commands.DecodeCommand(r.Body)
		if err != nil {
			if commands.IsMalformedPayload(err) {
				writeJSON(w, http.StatusBadRequest, commands.NewErrorBody(err))
				return
			}
			writeJSON(w, http.StatusOK, commands.NewErrorBody(err))
			return
		}
		writeJSON(w, http.StatusOK, dispatcher.Dispatch(r.Context(), cmd))
	}
}

// HandleNamedCommand dispatches a parameterless command, used by the
// read-only GET routes.
func HandleNamedCommand(dispatcher Dispatcher, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dispatcher.Dispatch(r.Context(), commands.NewCommand(name, nil)))
	}
}

// HandleGetOutcome answers GET /api/outcomes/{id}?wait=2s.
func HandleGetOutcome(dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, commands.NewErrorBody(&commands.ValidationError{
				Field:  commands.FieldSubmissionID,
				Reason: "submission id must be an integer",
			}))
			return
		}

		var wait time.Duration
		if raw := r.URL.Query().Get("wait"); raw != "" {
			wait, err = time.ParseDuration(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, commands.NewErrorBody(&commands.ValidationError{
					Field:  "wait",
					Reason: "wait must be a duration such as 500ms or 2s",
				}))
				return
			}
		}

		cmd := commands.NewCommand(commands.CommandGetOutcome, map[string]interface{}{
			commands.FieldSubmissionID: id,
			commands.FieldWaitMs:       wait.Milliseconds(),
		})
		writeJSON(w, http.StatusOK, dispatcher.Dispatch(r.Context(), cmd))
	}
}

// JournalEntry is the API shape of a journal row. State is decompressed
// when present.
type JournalEntry struct {
	models.JournalEntry
	State json.RawMessage `json:"state,omitempty"`
}

func HandleListJournal(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultJournalLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		entries, err := repository.ListOutcomes(r.Context(), limit)
		if err != nil {
			log.Error("failed to list journal entries: %v", err)
			http.Error(w, "Failed to list journal entries", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []models.JournalEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func HandleGetJournalEntry(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		submissionID, err := strconv.ParseUint(vars["id"], 10, 64)
		if err != nil {
			http.Error(w, "Failed to parse submission id", http.StatusBadRequest)
			return
		}

		entry, err := repository.GetOutcome(r.Context(), vars["session"], submissionID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Journal entry not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get journal entry: %v", err)
			http.Error(w, "Failed to get journal entry", http.StatusInternalServerError)
			return
		}

		resp := JournalEntry{JournalEntry: *entry}
		if len(entry.State) > 0 {
			var state json.RawMessage
			if err := messages.DecompressJSON(entry.State, &state); err != nil {
				log.Error("failed to decompress state for submission %d: %v", submissionID, err)
				http.Error(w, "Failed to decode journal state", http.StatusInternalServerError)
				return
			}
			resp.State = state
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
