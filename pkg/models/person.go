package models

// PersonFields lists the CSV columns of a person row, in file order.
var PersonFields = []string{"person_ID", "name", "first", "last", "middle", "email", "phone", "fax", "title"}

// PersonCSV is one parsed row of the people CSV file.
type PersonCSV struct {
	ID     string `json:"person_ID"`
	Name   string `json:"name"`
	First  string `json:"first"`
	Last   string `json:"last"`
	Middle string `json:"middle"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Fax    string `json:"fax"`
	Title  string `json:"title"`
}

// PersonDB is the projection of a PersonCSV stored in the people table.
type PersonDB struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// NewPersonCSV maps a record with len(PersonFields) fields onto a PersonCSV.
// The caller is responsible for checking the field count.
func NewPersonCSV(record []string) PersonCSV {
	return PersonCSV{
		ID:     record[0],
		Name:   record[1],
		First:  record[2],
		Last:   record[3],
		Middle: record[4],
		Email:  record[5],
		Phone:  record[6],
		Fax:    record[7],
		Title:  record[8],
	}
}
