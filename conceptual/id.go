package conceptual

type EmployeeID string

func (e EmployeeID) String() string {
	return string(e)
}

func (e EmployeeID) IsEmpty() bool {
	return e == ""
}
