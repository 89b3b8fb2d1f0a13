package student

import "github.com/aanand-mishra/student-records/internal/types"

// seed returns a fresh copy of the default collection used when the slot
// is empty or corrupt.
func seed() []types.Student {
	return []types.Student{
		{
			ID: 1,
			Fields: types.Fields{
				Name:   "Ava Johnson",
				Email:  "ava.johnson@example.com",
				Course: "Computer Science",
				Marks:  88,
				Result: types.ResultPass,
			},
		},
		{
			ID: 2,
			Fields: types.Fields{
				Name:   "Noah Williams",
				Email:  "noah.williams@example.com",
				Course: "Business Administration",
				Marks:  62,
				Result: types.ResultPass,
			},
		},
		{
			ID: 3,
			Fields: types.Fields{
				Name:   "Sophia Brown",
				Email:  "sophia.brown@example.com",
				Course: "Mathematics",
				Marks:  45,
				Result: types.ResultFail,
			},
		},
	}
}
