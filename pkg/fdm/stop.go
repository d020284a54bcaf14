package fdm

type Stop struct {
	PrimaryIdentifier string            `groups:"basic"`
	OtherIdentifiers  map[string]string `groups:"detailed"`

	PrimaryName string `groups:"basic"`

	Location *Location `groups:"basic"`

	Status string `groups:"detailed"`
}
