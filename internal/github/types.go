package github

// Tagged activity variants with known field sets, one per category. These are
// what the collector stores and what downstream formatting consumes; raw gh
// output never leaks past this package.

type PullRequest struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	State     string `json:"state"`
	Status    string `json:"status"` // "open" or "merged"
	Repo      string `json:"repo"`
	IsDraft   bool   `json:"is_draft,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Issue struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	State     string   `json:"state"`
	Relation  string   `json:"relation"` // "assigned" or "created"
	Repo      string   `json:"repo"`
	Labels    []string `json:"labels,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

type Commit struct {
	SHA        string `json:"sha"`
	Message    string `json:"message"`
	URL        string `json:"url"`
	Repo       string `json:"repo"`
	AuthoredAt string `json:"authored_at,omitempty"`
}

type Review struct {
	PRNumber int    `json:"pr_number"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	State    string `json:"state"`
	Relation string `json:"relation"` // "given" or "received"
	Repo     string `json:"repo"`
	Author   string `json:"author,omitempty"`
	Comments int    `json:"comments,omitempty"`
}

type Comment struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Repo      string `json:"repo"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ActivityReport aggregates one run's collected activity, bounded by the
// lookback window.
type ActivityReport struct {
	Username     string        `json:"username"`
	DaysBack     int           `json:"days_back"`
	PullRequests []PullRequest `json:"pull_requests,omitempty"`
	Issues       []Issue       `json:"issues,omitempty"`
	Commits      []Commit      `json:"commits,omitempty"`
	Reviews      []Review      `json:"reviews,omitempty"`
	Comments     []Comment     `json:"comments,omitempty"`
}

// Empty reports whether no activity was collected in any category.
func (r *ActivityReport) Empty() bool {
	return len(r.PullRequests) == 0 &&
		len(r.Issues) == 0 &&
		len(r.Commits) == 0 &&
		len(r.Reviews) == 0 &&
		len(r.Comments) == 0
}
