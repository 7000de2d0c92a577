package export

// CourseRow is one line of an exported timetable course list.
type CourseRow struct {
	Position   int    `csv:"no"`
	CourseCode string `csv:"course_code"`
	Section    string `csv:"section"`
	Name       string `csv:"name"`
	Category   string `csv:"category"`
	Credits    int    `csv:"credits"`
	Professor  string `csv:"professor"`
	Room       string `csv:"room"`
	Schedule   string `csv:"schedule"`
}

// Document is a titled course list with its credit total.
type Document struct {
	Title        string
	Rows         []CourseRow
	TotalCredits int
}

var pdfColumns = []struct {
	header string
	width  float64
	value  func(CourseRow) string
}{
	{"No", 10, func(r CourseRow) string { return itoa(r.Position) }},
	{"Code", 24, func(r CourseRow) string { return r.CourseCode }},
	{"Sec", 12, func(r CourseRow) string { return r.Section }},
	{"Name", 46, func(r CourseRow) string { return r.Name }},
	{"Category", 30, func(r CourseRow) string { return r.Category }},
	{"Cr", 10, func(r CourseRow) string { return itoa(r.Credits) }},
	{"Schedule", 58, func(r CourseRow) string { return r.Schedule }},
}
