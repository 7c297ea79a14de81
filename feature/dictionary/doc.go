// Package dictionary is the persistent store of games, categories and
// entries, and exposes it over HTTP.
//
// Repositories return (nil, nil) for a lookup that finds nothing. Deleting
// a game removes its entries in the same transaction; deleting a category
// that entries still reference fails with ErrCategoryInUse.
package dictionary
