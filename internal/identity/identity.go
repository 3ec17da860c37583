// Package identity generates synthetic people for seeding test tables:
// full names, short IDs built from initials, usernames and email addresses.
//
// Nothing here is guaranteed unique; callers that need uniqueness must
// check for it.
package identity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/etl/internal/core"
)

const (
	idDigits       = 3
	usernameSuffix = 5 // runes taken from the second name token
)

// Generator produces synthetic identities. It is not safe for concurrent use.
type Generator struct {
	faker  *gofakeit.Faker
	domain string
}

// New returns a Generator whose output is repeatable for a given non-zero
// seed. Seed 0 picks a random one. Generated emails use domain.
func New(seed uint64, domain string) *Generator {
	return &Generator{
		faker:  gofakeit.New(seed),
		domain: domain,
	}
}

// RandomNames returns n full names. n <= 0 yields an empty slice.
func (g *Generator) RandomNames(n int) []string {
	if n <= 0 {
		return []string{}
	}
	names := make([]string, n)
	for i := range names {
		names[i] = g.faker.Name()
	}
	return names
}

// RandomIDs returns, for each name, the first letter of every token followed
// by three digits from 1 to 9.
func (g *Generator) RandomIDs(names []string) []string {
	ids := make([]string, len(names))
	for i, name := range names {
		var b strings.Builder
		for _, token := range strings.Fields(name) {
			r, _ := utf8.DecodeRuneInString(token)
			b.WriteRune(r)
		}
		for range idDigits {
			b.WriteByte(byte('0' + g.faker.IntRange(1, 9)))
		}
		ids[i] = b.String()
	}
	return ids
}

// Emails appends the generator's domain to each username, keeping order.
func (g *Generator) Emails(usernames []string) []string {
	emails := make([]string, len(usernames))
	for i, u := range usernames {
		emails[i] = u + "@" + g.domain
	}
	return emails
}

// People generates n identities as name, id, username and email columns,
// ready for core.CreateTableFromColumns.
func (g *Generator) People(n int) ([]core.ColumnData, error) {
	names := g.RandomNames(n)
	usernames, err := GenerateUsernames(names)
	if err != nil {
		return nil, err
	}
	return []core.ColumnData{
		{Name: "name", Values: texts(names)},
		{Name: "id", Values: texts(g.RandomIDs(names))},
		{Name: "username", Values: texts(usernames)},
		{Name: "email", Values: texts(g.Emails(usernames))},
	}, nil
}

// GenerateUsernames lower-cases each name and joins the first letter of the
// first token with up to five letters of the second. A name with fewer than
// two tokens is an invalid argument.
func GenerateUsernames(names []string) ([]string, error) {
	lower := cases.Lower(language.Und)

	usernames := make([]string, len(names))
	for i, name := range names {
		tokens := strings.Fields(lower.String(name))
		if len(tokens) < 2 {
			return nil, core.NewError(core.KindInvalidArgument, "generate usernames",
				fmt.Sprintf("name %q needs at least two tokens", name), nil)
		}
		first, _ := utf8.DecodeRuneInString(tokens[0])
		usernames[i] = string(first) + prefix(tokens[1], usernameSuffix)
	}
	return usernames, nil
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func texts(ss []string) []core.Value {
	values := make([]core.Value, len(ss))
	for i, s := range ss {
		values[i] = core.Text(s)
	}
	return values
}
