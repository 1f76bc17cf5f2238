package repository

// Unsubscribe releases a live query. Calling it more than once is safe.
type Unsubscribe func()
