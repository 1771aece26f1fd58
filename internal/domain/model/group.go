package model

// PersonGroup is one person's records in chronological order.
type PersonGroup struct {
	PersonID string
	Records  []Record
}

// First returns the earliest record.
func (g PersonGroup) First() Record { return g.Records[0] }

// Last returns the latest record.
func (g PersonGroup) Last() Record { return g.Records[len(g.Records)-1] }

// IsFirst reports whether position i holds the person's first engagement.
func (g PersonGroup) IsFirst(i int) bool { return i == 0 }

// IsLast reports whether position i holds the person's last engagement.
func (g PersonGroup) IsLast(i int) bool { return i == len(g.Records)-1 }

// Remaining is the number of records after position i.
func (g PersonGroup) Remaining(i int) int { return len(g.Records) - 1 - i }

// Group splits records sorted by SortByPerson into per-person groups.
// Groups share the backing array of records.
func Group(records []Record) []PersonGroup {
	var groups []PersonGroup
	start := 0
	for i := 1; i <= len(records); i++ {
		if i == len(records) || records[i].PersonID != records[start].PersonID {
			groups = append(groups, PersonGroup{
				PersonID: records[start].PersonID,
				Records:  records[start:i:i],
			})
			start = i
		}
	}
	return groups
}
