package domain

import "sort"

// Fields is a partial update keyed by column name.
type Fields map[string]any

const (
	UserFieldEmail               = "email"
	UserFieldFirstName           = "first_name"
	UserFieldLastName            = "last_name"
	UserFieldPassword            = "password"
	UserFieldCountry             = "country"
	UserFieldBirthDate           = "birth_date"
	UserFieldCreationAccountDate = "creation_account_date"

	TweetFieldContent   = "content"
	TweetFieldUpdatedAt = "updated_at"
)

// Keys returns the column names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
