package resolver

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	errspkg "github.com/drblury/fakeflow/internal/runtime/errors"
)

const (
	dateLayout = "2006-01-02"

	// MaxDigits bounds the digit count of the number generators.
	MaxDigits = 255
	// MaxCount bounds word, sentence and password lengths.
	MaxCount = 10000
)

var (
	wordPattern = regexp.MustCompile(`\w+`)

	departments = []string{
		"Automotive", "Baby", "Beauty", "Books", "Clothing", "Computers", "Electronics",
		"Games", "Garden", "Grocery", "Health", "Home", "Industrial", "Jewelry",
		"Kids", "Movies", "Music", "Outdoors", "Shoes", "Sports", "Tools", "Toys",
	}
)

func text(fn func(f *gofakeit.Faker) string) GeneratorFunc {
	return func(c *Call) (any, error) { return fn(c.Rand), nil }
}

func registerBuiltins(r *Registry) {
	r.Register("Name", "first_name", text((*gofakeit.Faker).FirstName))
	r.Register("Name", "last_name", text((*gofakeit.Faker).LastName))
	r.Register("Name", "name", text((*gofakeit.Faker).Name))
	r.Register("Name", "prefix", text((*gofakeit.Faker).NamePrefix))
	r.Register("Name", "suffix", text((*gofakeit.Faker).NameSuffix))
	r.Register("Name", "title", text((*gofakeit.Faker).JobTitle))

	r.Register("Address", "city", text((*gofakeit.Faker).City))
	r.Register("Address", "street_address", text((*gofakeit.Faker).Street))
	r.Register("Address", "street_name", text((*gofakeit.Faker).StreetName))
	r.Register("Address", "zip_code", text((*gofakeit.Faker).Zip))
	r.Register("Address", "state", text((*gofakeit.Faker).State))
	r.Register("Address", "country", text((*gofakeit.Faker).Country))
	r.Register("Address", "country_code", text((*gofakeit.Faker).CountryAbr))
	r.Register("Address", "latitude", func(c *Call) (any, error) { return c.Rand.Latitude(), nil })
	r.Register("Address", "longitude", func(c *Call) (any, error) { return c.Rand.Longitude(), nil })

	r.Register("Internet", "email", text((*gofakeit.Faker).Email))
	r.Register("Internet", "user_name", userName)
	r.Register("Internet", "url", text((*gofakeit.Faker).URL))
	r.Register("Internet", "domain_name", text((*gofakeit.Faker).DomainName))
	r.Register("Internet", "ip_v4_address", text((*gofakeit.Faker).IPv4Address))
	r.Register("Internet", "ip_v6_address", text((*gofakeit.Faker).IPv6Address))
	r.Register("Internet", "mac_address", text((*gofakeit.Faker).MacAddress))
	r.Register("Internet", "password", password)

	r.Register("Number", "number", number)
	r.Register("Number", "leading_zero_number", leadingZeroNumber)
	r.Register("Number", "digit", func(c *Call) (any, error) { return c.Rand.Number(0, 9), nil })
	r.Register("Number", "between", between)
	r.Register("Number", "decimal", decimal)

	r.Register("Lorem", "word", text((*gofakeit.Faker).LoremIpsumWord))
	r.Register("Lorem", "words", loremWords)
	r.Register("Lorem", "sentence", loremSentence)
	r.Register("Lorem", "paragraph", loremParagraph)

	r.Register("Company", "name", text((*gofakeit.Faker).Company))
	r.Register("Company", "suffix", text((*gofakeit.Faker).CompanySuffix))
	r.Register("Company", "buzzword", text((*gofakeit.Faker).BuzzWord))
	r.Register("Company", "catch_phrase", text((*gofakeit.Faker).BS))

	r.Register("Commerce", "product_name", productName)
	r.Register("Commerce", "department", func(c *Call) (any, error) { return c.Rand.RandomString(departments), nil })
	r.Register("Commerce", "price", price)

	r.Register("PhoneNumber", "phone_number", text((*gofakeit.Faker).Phone))
	r.Register("PhoneNumber", "cell_phone", text((*gofakeit.Faker).PhoneFormatted))

	r.Register("Date", "backward", dateBackward)
	r.Register("Date", "forward", dateForward)
	r.Register("Date", "birthday", birthday)

	r.Register("Boolean", "boolean", boolean)

	r.Register("Color", "color_name", text((*gofakeit.Faker).Color))
	r.Register("Color", "hex_color", text((*gofakeit.Faker).HexColor))

	r.Register("Crypto", "uuid", randomUUID)
	r.Register("UUID", "v4", randomUUID)
}

// NumberString returns exactly digits decimal digits, 1 to MaxDigits. Unless
// leadingZero is set the first digit is non-zero (a single digit may still
// be 0).
func NumberString(rng *gofakeit.Faker, digits int, leadingZero bool) (string, error) {
	if digits < 1 || digits > MaxDigits {
		return "", fmt.Errorf("%w: digit count must be between 1 and %d, got %d", errspkg.ErrInvalidArgument, MaxDigits, digits)
	}
	var b strings.Builder
	b.Grow(digits)
	for i := 0; i < digits; i++ {
		low := 0
		if i == 0 && !leadingZero && digits > 1 {
			low = 1
		}
		b.WriteByte(byte('0' + rng.Number(low, 9)))
	}
	return b.String(), nil
}

func number(c *Call) (any, error) {
	digits, err := c.IntIn(0, 10, 1, MaxDigits)
	if err != nil {
		return nil, err
	}
	return NumberString(c.Rand, digits, false)
}

func leadingZeroNumber(c *Call) (any, error) {
	digits, err := c.IntIn(0, 10, 1, MaxDigits)
	if err != nil {
		return nil, err
	}
	return NumberString(c.Rand, digits, true)
}

// between returns an int unless either bound is a float.
func between(c *Call) (any, error) {
	for i := 0; i < len(c.Args) && i < 2; i++ {
		if _, ok := c.Args[i].(float64); ok {
			from, err := c.Float(0, 1)
			if err != nil {
				return nil, err
			}
			to, err := c.Float(1, 5000)
			if err != nil {
				return nil, err
			}
			if from > to {
				from, to = to, from
			}
			return c.Rand.Float64Range(from, to), nil
		}
	}
	from, err := c.Int(0, 1)
	if err != nil {
		return nil, err
	}
	to, err := c.Int(1, 5000)
	if err != nil {
		return nil, err
	}
	if from > to {
		from, to = to, from
	}
	return c.Rand.Number(from, to), nil
}

// decimal with a whole part of 0 digits yields 0.x.
func decimal(c *Call) (any, error) {
	left, err := c.IntIn(0, 5, 0, MaxDigits)
	if err != nil {
		return nil, err
	}
	right, err := c.IntIn(1, 2, 1, MaxDigits)
	if err != nil {
		return nil, err
	}
	whole := "0"
	if left > 0 {
		if whole, err = NumberString(c.Rand, left, false); err != nil {
			return nil, err
		}
	}
	fraction, err := NumberString(c.Rand, right, true)
	if err != nil {
		return nil, err
	}
	// A trailing zero would be lost by the float conversion.
	fraction = fraction[:len(fraction)-1] + strconv.Itoa(c.Rand.Number(1, 9))
	return strconv.ParseFloat(whole+"."+fraction, 64)
}

func userName(c *Call) (any, error) {
	if len(c.Args) > 0 {
		if _, ok := c.Args[0].(int); ok {
			minLength, err := c.IntIn(0, 0, 0, MaxCount)
			if err != nil {
				return nil, err
			}
			name := strings.ToLower(c.Rand.Username())
			for len(name) < minLength {
				name += strconv.Itoa(c.Rand.Number(0, 9))
			}
			return name, nil
		}
	}

	specifier, err := c.String(0, "")
	if err != nil {
		return nil, err
	}
	separators, err := c.Strings(1, []string{".", "_"})
	if err != nil {
		return nil, err
	}
	if specifier == "" {
		return strings.ToLower(c.Rand.Username()), nil
	}

	words := wordPattern.FindAllString(specifier, -1)
	for i := len(words) - 1; i > 0; i-- {
		j := c.Rand.Number(0, i)
		words[i], words[j] = words[j], words[i]
	}
	separator := ""
	if len(separators) > 0 {
		separator = c.Rand.RandomString(separators)
	}
	return strings.ToLower(strings.Join(words, separator)), nil
}

func password(c *Call) (any, error) {
	length, err := c.IntIn(0, 8, 1, MaxCount)
	if err != nil {
		return nil, err
	}
	return c.Rand.Password(true, true, true, false, false, length), nil
}

func words(rng *gofakeit.Faker, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = rng.LoremIpsumWord()
	}
	return out
}

func sentence(rng *gofakeit.Faker, n int) string {
	s := strings.Join(words(rng, n), " ")
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

func loremWords(c *Call) (any, error) {
	n, err := c.IntIn(0, 3, 0, MaxCount)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, n)
	for _, w := range words(c.Rand, n) {
		out = append(out, w)
	}
	return out, nil
}

func loremSentence(c *Call) (any, error) {
	n, err := c.IntIn(0, 4, 1, MaxCount)
	if err != nil {
		return nil, err
	}
	return sentence(c.Rand, n), nil
}

func loremParagraph(c *Call) (any, error) {
	n, err := c.IntIn(0, 3, 1, MaxCount)
	if err != nil {
		return nil, err
	}
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = sentence(c.Rand, c.Rand.Number(4, 10))
	}
	return strings.Join(sentences, " "), nil
}

func productName(c *Call) (any, error) {
	return capitalize(c.Rand.Adjective()) + " " + capitalize(c.Rand.Noun()), nil
}

func price(c *Call) (any, error) {
	low, err := c.Float(0, 1)
	if err != nil {
		return nil, err
	}
	high, err := c.Float(1, 100)
	if err != nil {
		return nil, err
	}
	if low > high {
		low, high = high, low
	}
	return math.Round(c.Rand.Float64Range(low, high)*100) / 100, nil
}

func dateBackward(c *Call) (any, error) {
	days, err := c.Int(0, 365)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return c.Rand.DateRange(now.AddDate(0, 0, -days), now).Format(dateLayout), nil
}

func dateForward(c *Call) (any, error) {
	days, err := c.Int(0, 365)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return c.Rand.DateRange(now, now.AddDate(0, 0, days)).Format(dateLayout), nil
}

func birthday(c *Call) (any, error) {
	minAge, err := c.Int(0, 18)
	if err != nil {
		return nil, err
	}
	maxAge, err := c.Int(1, 65)
	if err != nil {
		return nil, err
	}
	if minAge > maxAge {
		minAge, maxAge = maxAge, minAge
	}
	now := time.Now()
	return c.Rand.DateRange(now.AddDate(-maxAge, 0, 0), now.AddDate(-minAge, 0, 0)).Format(dateLayout), nil
}

func boolean(c *Call) (any, error) {
	ratio, err := c.Float(0, 0.5)
	if err != nil {
		return nil, err
	}
	return c.Rand.Float64() < ratio, nil
}

// fakerReader feeds google/uuid from the faker so seeded runs stay
// reproducible.
type fakerReader struct {
	rng *gofakeit.Faker
}

func (r fakerReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Number(0, 255))
	}
	return len(p), nil
}

func randomUUID(c *Call) (any, error) {
	id, err := uuid.NewRandomFromReader(fakerReader{rng: c.Rand})
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
