package services

// SetEmployeesRequest HTTP request model
type SetEmployeesRequest struct {
	EmployeeIDs []int64 `json:"employeeIds"`
}
