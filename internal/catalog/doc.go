// Package catalog holds the file catalog domain: categories, the attachment
// classifier, and the item and user services that sit between the Telegram
// handlers and storage.
package catalog
