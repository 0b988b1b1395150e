package club

// Payer is a person responsible for paying an athlete's fees. Often a
// guardian, sometimes the athlete themselves. Name validation mirrors
// Athlete's; the link back to athletes lives on the Athlete aggregate and
// is queried through the stores, never navigated in memory.
type Payer struct {
	ID         PayerID
	FirstName  string
	SecondName string
	LastName   string
}

func NewPayer(firstName, secondName, lastName string) (*Payer, error) {
	if err := validateName(firstName, "firstName"); err != nil {
		return nil, err
	}
	if err := validateName(lastName, "lastName"); err != nil {
		return nil, err
	}
	return &Payer{
		ID:         NewPayerID(),
		FirstName:  firstName,
		SecondName: secondName,
		LastName:   lastName,
	}, nil
}

// Rename always overwrites after validation. Unlike Athlete.Rename there is
// no dirty check; payers carry no modification timestamp to protect.
func (p *Payer) Rename(firstName, secondName, lastName string) error {
	if err := validateName(firstName, "firstName"); err != nil {
		return err
	}
	if err := validateName(lastName, "lastName"); err != nil {
		return err
	}
	p.FirstName = firstName
	p.SecondName = secondName
	p.LastName = lastName
	return nil
}

func (p *Payer) FullName() string {
	return joinName(p.FirstName, p.SecondName, p.LastName)
}
