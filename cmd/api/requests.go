package main

type mountCourseRequest struct {
	CourseID string `json:"courseId" validate:"required,max=64,excludesall=/?#"`
}

type mountModuleRequest struct {
	CourseID string `json:"courseId" validate:"required,max=64,excludesall=/?#"`
	ModuleID string `json:"moduleId" validate:"required,max=64,excludesall=/?#"`
}

type MountViewResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type SelectTabRequest struct {
	Tab string `json:"tab" validate:"required,oneof=reading-materials videos assignments quiz"`
}

type WatchVideoResponse struct {
	URL string `json:"url"`
}

type StartAssignmentResponse struct {
	Route string `json:"route"`
}
