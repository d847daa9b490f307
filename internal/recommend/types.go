package recommend

// Course is a catalog entry. Courses are defined once and never mutated.
type Course struct {
	Title    string  `json:"title"`
	Provider string  `json:"provider"`
	Hours    float64 `json:"hours"`
	Topic    string  `json:"topic"`
	Format   string  `json:"format"`
	Price    string  `json:"price"` // display value, not a parsed currency
	URL      string  `json:"url"`
}

// Recommendation is a course paired with a short justification.
type Recommendation struct {
	Course
	AIReason string `json:"ai_reason"`
}

// Request carries everything the engine needs for one recommendation call.
type Request struct {
	RequesterName    string
	HoursOutstanding int
	RawInterests     string
}

// scoredCourse pairs a course with its relevance for a single request.
type scoredCourse struct {
	course Course
	score  int
}
