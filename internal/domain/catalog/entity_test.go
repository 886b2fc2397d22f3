package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook(t *testing.T) {
	_, err := NewBook(" ", "标题", 2020, nil)
	assert.ErrorIs(t, err, ErrInvalidISBN)

	_, err = NewBook("9787111558422", "", 2020, nil)
	assert.ErrorIs(t, err, ErrInvalidTitle)

	b, err := NewBook("9787111558422", "Go程序设计语言", 2016, []Authorship{
		{Name: "Alan Donovan"},
		{Name: "Brian Kernighan", Role: "Co-Author"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Author", b.Authors[0].Role)
	assert.Equal(t, "Alan Donovan, Brian Kernighan", b.AuthorNames())
}

func TestReview_Validate(t *testing.T) {
	r := &Review{Reviewer: "王五", Rating: decimal.RequireFromString("4.5")}
	assert.NoError(t, r.Validate())

	r.Rating = decimal.RequireFromString("5.01")
	assert.ErrorIs(t, r.Validate(), ErrInvalidRating)

	r.Rating = decimal.NewFromInt(3)
	r.Reviewer = ""
	assert.ErrorIs(t, r.Validate(), ErrInvalidReviewer)
}

func TestCustomer_FullName(t *testing.T) {
	c := &Customer{FirstName: "San", LastName: "Zhang"}
	assert.Equal(t, "San Zhang", c.FullName())
}
