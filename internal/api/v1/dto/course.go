package dto

// CourseSummaryDTO is returned in ranking and recommendation responses
type CourseSummaryDTO struct {
	CourseID       string   `json:"courseId"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	Location       string   `json:"location"`
	Tags           []string `json:"tags"`
	LikeCount      int      `json:"likeCount"`
	AverageRating  float64  `json:"averageRating"`
	ReviewCount    int      `json:"reviewCount"`
	PopularityRank *int     `json:"popularityRank,omitempty"`
}
