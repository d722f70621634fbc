package progress

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/aura-survey/backend/internal/models"
)

// Version-1 documents are flat key/value dumps of the browser client's storage.
const (
	legacySelectedPrefix   = "survey_selectedFruit_q"
	legacyPredictionPrefix = "survey_prediction_q"
	legacyCompletedKey     = "survey_completed_questions"
	legacyFeedbackKey      = "survey_feedback_map"
	legacyTokenKey         = "auth_token"
	legacyUserKey          = "survey_user"
)

var errUnknownFormat = errors.New("unknown progress format")

// Decode parses a state document of either version.
func Decode(data []byte) (*State, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if raw, ok := probe["version"]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err != nil || v != Version {
			return nil, errUnknownFormat
		}
		var st State
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, err
		}
		st.normalize()
		return &st, nil
	}

	flat := make(map[string]string, len(probe))
	for k, raw := range probe {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			// Values that were stored unquoted are kept as their JSON text.
			s = string(raw)
		}
		flat[k] = s
	}
	return fromLegacy(flat), nil
}

// fromLegacy converts version-1 keys. Malformed values are skipped individually.
func fromLegacy(flat map[string]string) *State {
	st := NewState()
	for k, v := range flat {
		switch {
		case strings.HasPrefix(k, legacySelectedPrefix):
			if id, ok := questionSuffix(k, legacySelectedPrefix); ok && v != "" {
				if st.LegacySelected == nil {
					st.LegacySelected = make(map[int64]string)
				}
				st.LegacySelected[id] = v
			}
		case strings.HasPrefix(k, legacyPredictionPrefix):
			if id, ok := questionSuffix(k, legacyPredictionPrefix); ok {
				if p, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
					st.Predictions[id] = p
				}
			}
		case k == legacyCompletedKey:
			var ids []int64
			if json.Unmarshal([]byte(v), &ids) == nil {
				for _, id := range ids {
					st.MarkCompleted(id)
				}
			}
		case k == legacyFeedbackKey:
			var m map[string]bool
			if json.Unmarshal([]byte(v), &m) == nil {
				for qid, shown := range m {
					if id, err := strconv.ParseInt(qid, 10, 64); err == nil && shown {
						st.FeedbackShown[id] = true
					}
				}
			}
		}
	}

	if token := flat[legacyTokenKey]; token != "" {
		st.Session = &Session{Token: token}
		var u models.UserPublic
		if raw := flat[legacyUserKey]; raw != "" && json.Unmarshal([]byte(raw), &u) == nil && u.ID > 0 {
			st.Session.User = &u
		}
	}
	return st
}

func questionSuffix(key, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
	return id, err == nil && id > 0
}
