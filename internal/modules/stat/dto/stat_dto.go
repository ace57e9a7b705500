package dto

type CreatorStats struct {
	TotalCourses     int64 `json:"totalCourses"`
	PublishedCourses int64 `json:"publishedCourses"`
	TotalEnrollments int64 `json:"totalEnrollments"`
}

type StudentStats struct {
	EnrolledCourses int64 `json:"enrolledCourses"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type LevelCount struct {
	Level string `json:"level"`
	Count int64  `json:"count"`
}

type AdminStats struct {
	CoursesByCategory []CategoryCount `json:"coursesByCategory"`
	CoursesByLevel    []LevelCount    `json:"coursesByLevel"`
}

type StatsResponse struct {
	TotalCourses                int64   `json:"totalCourses"`
	PublishedCourses            int64   `json:"publishedCourses"`
	TotalStudents               int64   `json:"totalStudents"`
	TotalCreators               int64   `json:"totalCreators"`
	TotalEnrollments            int64   `json:"totalEnrollments"`
	AverageEnrollmentsPerCourse float64 `json:"averageEnrollmentsPerCourse"`

	Creator *CreatorStats `json:"creator,omitempty"`
	Student *StudentStats `json:"student,omitempty"`
	Admin   *AdminStats   `json:"admin,omitempty"`
}
