// Package conventions decides which role a loaded type plays and builds the
// matching facade.
//
// Roles follow naming and structural conventions:
//
//	domain      struct with ID and Version fields
//	handler     name ends in "Controller"
//	flow        name ends in "Flow"
//	data source name ends in "DataSource"
//	service     name ends in "Service"
//
// Doc-comment directives refine the defaults:
//
//	//roster:disabled                 the artifact is unavailable
//	//roster:default <action>         default handler action
//	//roster:uri <pattern>            extra URI pattern for a handler (repeatable)
//	//roster:transactional false      non-transactional service
package conventions
