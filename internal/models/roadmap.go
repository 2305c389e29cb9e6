package models

// Subtask is a course or skill that gates one roadmap step.
type Subtask struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// RoadmapDefinition is the read-only catalog input for one roadmap.
type RoadmapDefinition struct {
	RoadmapID string    `json:"roadmap_id" yaml:"id"`
	Company   string    `json:"company" yaml:"company"`
	Courses   []Subtask `json:"courses" yaml:"courses"`
	Skills    []Subtask `json:"skills" yaml:"skills"`
}

func (d RoadmapDefinition) CourseIDs() []string {
	return subtaskIDs(d.Courses)
}

func (d RoadmapDefinition) SkillIDs() []string {
	return subtaskIDs(d.Skills)
}

func subtaskIDs(items []Subtask) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
