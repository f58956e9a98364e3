package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknook/booknook-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testBook(id, title, author, description string, categories ...string) *domain.Book {
	now := time.Now()
	b := &domain.Book{
		CreatedAt:   now,
		UpdatedAt:   now,
		ID:          id,
		Title:       title,
		Author:      author,
		Description: description,
		Price:       9.99,
	}
	for _, name := range categories {
		b.Categories = append(b.Categories, domain.Category{ID: "cat-" + name, Name: name})
	}
	return b
}

func seedIndex(t *testing.T, idx *Index) {
	t.Helper()
	books := []*domain.Book{
		testBook("book-1", "The Name of the Wind", "Patrick Rothfuss", "A young arcanist tells his story.", "Fantasy"),
		testBook("book-2", "The Wise Man's Fear", "Patrick Rothfuss", "The story continues.", "Fantasy"),
		testBook("book-3", "Project Hail Mary", "Andy Weir", "A lone astronaut must save the earth.", "Science Fiction"),
	}
	docs := make([]*BookDocument, 0, len(books))
	for _, b := range books {
		docs = append(docs, BookToDocument(b))
	}
	require.NoError(t, idx.IndexBooks(docs))
}

func TestSearch_ByTitle(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "wind", Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, "The Name of the Wind", result.Hits[0].Title)
}

func TestSearch_ByAuthor(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "rothfuss", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearch_ByDescription(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Query: "astronaut", Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-3", result.Hits[0].ID)
}

func TestSearch_CategoryFilter(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Category: "Fantasy", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	result, err := idx.Search(context.Background(), Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
}

func TestDeleteBook(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	require.NoError(t, idx.DeleteBook("book-3"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRebuild_EmptiesIndex(t *testing.T) {
	idx := newTestIndex(t)
	seedIndex(t, idx)

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, idx.IndexBook(BookToDocument(testBook("book-1", "Dune", "Frank Herbert", ""))))
	require.NoError(t, idx.Close())

	reopened, err := NewIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
