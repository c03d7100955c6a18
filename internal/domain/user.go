package domain

// User is one row of the user_data table.
type User struct {
	UserID string
	Name   string
	Email  string
	Age    int
}

// IsAdult reports whether the user clears the adult age threshold.
func (u User) IsAdult() bool {
	return u.Age > AdultAge
}

// AdultAge is the exclusive lower bound used by the adult filter.
const AdultAge = 25
