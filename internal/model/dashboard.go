package model

type Workload struct {
	EmployeeID     string `json:"employeeId"`
	Name           string `json:"name"`
	TaskCount      int    `json:"taskCount"`
	CompletedCount int    `json:"completedCount"`
}

type DashboardStats struct {
	TotalEmployees  int `json:"totalEmployees"`
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`

	CompletedPercent  int `json:"completedPercent"`
	InProgressPercent int `json:"inProgressPercent"`
	PendingPercent    int `json:"pendingPercent"`

	Workload []Workload `json:"workload"`
}
