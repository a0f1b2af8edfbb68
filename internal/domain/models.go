package domain

import "time"

// Role is the access level a principal holds.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal is the authenticated caller resolved by the session provider.
// The zero value means "no principal".
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (p Principal) Authenticated() bool {
	return p.ID != "" && p.Role.Valid()
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == RoleAdmin
}

// Question is a stored MCQ record.
type Question struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer"`
	IsPublished   bool      `json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]string(nil), q.Options...)
	}
	return out
}

// HasOption reports whether value is verbatim one of the options.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Draft carries the admin-supplied fields of a new question.
type Draft struct {
	Title         string   `json:"title"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	IsPublished   bool     `json:"isPublished"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title         *string  `json:"title,omitempty"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer *string  `json:"correctAnswer,omitempty"`
	IsPublished   *bool    `json:"isPublished,omitempty"`
}

// Apply merges the patch onto a copy of q. Timestamps are not touched.
func (p Patch) Apply(q Question) Question {
	out := q.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Options != nil {
		out.Options = append([]string(nil), p.Options...)
	}
	if p.CorrectAnswer != nil {
		out.CorrectAnswer = *p.CorrectAnswer
	}
	if p.IsPublished != nil {
		out.IsPublished = *p.IsPublished
	}
	return out
}

// Snapshot is the ordered collection observed right after a mutation.
type Snapshot struct {
	Version   uint64     `json:"version"`
	Questions []Question `json:"questions"`
}

// Visible filters the snapshot down to what principal may read.
func (s Snapshot) Visible(principal Principal) Snapshot {
	return Snapshot{Version: s.Version, Questions: VisibleTo(principal, s.Questions)}
}

// VisibleTo applies the role visibility rule: admins see everything, other
// principals only published records, and an absent principal sees nothing.
func VisibleTo(principal Principal, questions []Question) []Question {
	out := make([]Question, 0, len(questions))
	if !principal.Authenticated() {
		return out
	}
	for _, q := range questions {
		if principal.IsAdmin() || q.IsPublished {
			out = append(out, q.Clone())
		}
	}
	return out
}

// AnswerSubmission records the option a user picked for a question.
type AnswerSubmission struct {
	QuestionID  string    `json:"questionId"`
	UserID      string    `json:"userId"`
	Answer      string    `json:"answer"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Score is derived from a quiz session and never stored.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Account is a login identity known to the session provider.
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

func (a Account) Principal() Principal {
	return Principal{ID: a.ID, Role: a.Role}
}
