package session

// Package session holds the per-user session store and the state machine that
// sequences the multi-turn download flow over a stateless message channel.
// Sessions for different users are independent; within one user everything is
// serialized through a per-session lock.
