// Package adminapi mounts the moderation dashboard endpoints on a go-router
// router. Handlers resolve the actor placed on the request by go-auth
// middleware, delegate to the service commands and queries, and render
// {success, data} envelopes. Failures are converted into go-errors values by
// ToError so hosts can reuse the same mapping in their own error handlers.
package adminapi
