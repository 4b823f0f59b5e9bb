package config

type UpdateConfigPayload struct {
	LookupTimeoutSeconds   *int      `json:"lookup_timeout_seconds,omitempty" validate:"omitempty,min=1,max=60"`
	FlaggedISBNGroups      *[]string `json:"flagged_isbn_groups,omitempty" validate:"omitempty,dive,numeric"`
	FirstCandidateFallback *bool     `json:"first_candidate_fallback,omitempty"`
}
