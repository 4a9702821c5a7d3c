// ABOUTME: Schema validation for mutation arguments before any write
// ABOUTME: Checks required fields and closed variant sets, naming the offending field

package store

import "fmt"

// ValidationError reports a mutation argument that fails schema
// conformance. It is returned before any record is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func missingField(field string) error {
	return &ValidationError{Field: field, Reason: "required field is missing"}
}

func badVariant(field string, got any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not an allowed value", got)}
}

func validServiceStatus(s ServiceStatus) bool {
	switch s {
	case ServiceUp, ServiceDown, ServiceDegraded:
		return true
	}
	return false
}

func validAgentLevel(l AgentLevel) bool {
	switch l {
	case AgentLevelL1, AgentLevelL2, AgentLevelL3, AgentLevelL4:
		return true
	}
	return false
}

func validAgentStatus(s AgentStatus) bool {
	switch s {
	case AgentActive, AgentIdle, AgentError:
		return true
	}
	return false
}

func validCronJobStatus(s CronJobStatus) bool {
	switch s {
	case CronEnabled, CronDisabled, CronJobError:
		return true
	}
	return false
}

func validCronRunStatus(s CronRunStatus) bool {
	switch s {
	case CronRunSuccess, CronRunError, CronRunPending:
		return true
	}
	return false
}

func validTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskPending, TaskApproved, TaskRejected, TaskCompleted:
		return true
	}
	return false
}

func validTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func validTaskEffort(e TaskEffort) bool {
	switch e {
	case Effort1Hour, Effort4Hours, Effort1Day, Effort3Days, Effort1Week:
		return true
	}
	return false
}

func validContentPlatform(p ContentPlatform) bool {
	switch p {
	case PlatformTwitter, PlatformBlog, PlatformEmail, PlatformDiscord, PlatformOther:
		return true
	}
	return false
}

func validDraftStatus(s DraftStatus) bool {
	switch s {
	case DraftDraft, DraftReview, DraftApproved, DraftPublished:
		return true
	}
	return false
}

func validEventType(t EventType) bool {
	switch t {
	case EventMeeting, EventDeadline, EventTask, EventReminder, EventGeneric:
		return true
	}
	return false
}

func validChatChannel(c ChatChannel) bool {
	switch c {
	case ChannelTelegram, ChannelDiscord, ChannelWebchat:
		return true
	}
	return false
}

func validChatRole(r ChatRole) bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	}
	return false
}

func validClientStatus(s ClientStatus) bool {
	switch s {
	case ClientProspect, ClientContacted, ClientMeeting, ClientProposal, ClientActive:
		return true
	}
	return false
}

func validProductStatus(s ProductStatus) bool {
	switch s {
	case ProductActive, ProductDevelopment, ProductConcept:
		return true
	}
	return false
}

// ValidateSystemStatus checks an upsert argument against the schema.
func ValidateSystemStatus(s *SystemStatus) error {
	if s.Name == "" {
		return missingField("name")
	}
	if !validServiceStatus(s.Status) {
		return badVariant("status", s.Status)
	}
	if s.LastCheck.IsZero() {
		return missingField("lastCheck")
	}
	return nil
}

// ValidateAgent checks a create argument against the schema.
func ValidateAgent(a *Agent) error {
	if a.Name == "" {
		return missingField("name")
	}
	if a.AgentID == "" {
		return missingField("id")
	}
	if a.Role == "" {
		return missingField("role")
	}
	if a.Model == "" {
		return missingField("model")
	}
	if !validAgentLevel(a.Level) {
		return badVariant("level", a.Level)
	}
	if !validAgentStatus(a.Status) {
		return badVariant("status", a.Status)
	}
	return nil
}

// ValidateCronJob checks a create argument against the schema.
func ValidateCronJob(j *CronJob) error {
	if j.Name == "" {
		return missingField("name")
	}
	if j.Schedule == "" {
		return missingField("schedule")
	}
	if !validCronJobStatus(j.Status) {
		return badVariant("status", j.Status)
	}
	if !validCronRunStatus(j.LastStatus) {
		return badVariant("lastStatus", j.LastStatus)
	}
	return nil
}

// ValidateTask checks a create argument against the schema.
func ValidateTask(t *Task) error {
	if t.Title == "" {
		return missingField("title")
	}
	if t.Category == "" {
		return missingField("category")
	}
	if !validTaskStatus(t.Status) {
		return badVariant("status", t.Status)
	}
	if !validTaskPriority(t.Priority) {
		return badVariant("priority", t.Priority)
	}
	if !validTaskEffort(t.Effort) {
		return badVariant("effort", t.Effort)
	}
	return nil
}

// ValidateContentDraft checks a create argument against the schema.
func ValidateContentDraft(d *ContentDraft) error {
	if d.Title == "" {
		return missingField("title")
	}
	if d.Content == "" {
		return missingField("content")
	}
	if !validContentPlatform(d.Platform) {
		return badVariant("platform", d.Platform)
	}
	if !validDraftStatus(d.Status) {
		return badVariant("status", d.Status)
	}
	return nil
}

// ValidateContentDraftPatch checks the supplied fields of a sparse update.
func ValidateContentDraftPatch(p ContentDraftPatch) error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Status != nil && !validDraftStatus(*p.Status) {
		return badVariant("status", *p.Status)
	}
	return nil
}

// ValidateCalendarEvent checks a create argument against the schema.
// The startTime <= endTime invariant is expected of callers but not
// enforced here, matching the write path's deliberate minimalism.
func ValidateCalendarEvent(e *CalendarEvent) error {
	if e.Title == "" {
		return missingField("title")
	}
	if !validEventType(e.Type) {
		return badVariant("type", e.Type)
	}
	if e.StartTime.IsZero() {
		return missingField("startTime")
	}
	if e.EndTime.IsZero() {
		return missingField("endTime")
	}
	return nil
}

// ValidateCalendarEventPatch checks the supplied fields of a sparse update.
func ValidateCalendarEventPatch(p CalendarEventPatch) error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Type != nil && !validEventType(*p.Type) {
		return badVariant("type", *p.Type)
	}
	return nil
}

// ValidateChatMessage checks an append argument against the schema.
func ValidateChatMessage(m *ChatMessage) error {
	if m.SessionID == "" {
		return missingField("sessionId")
	}
	if m.Content == "" {
		return missingField("content")
	}
	if !validChatChannel(m.Channel) {
		return badVariant("channel", m.Channel)
	}
	if !validChatRole(m.Role) {
		return badVariant("role", m.Role)
	}
	return nil
}

// ValidateClient checks a create argument against the schema.
func ValidateClient(c *Client) error {
	if c.Name == "" {
		return missingField("name")
	}
	if !validClientStatus(c.Status) {
		return badVariant("status", c.Status)
	}
	for i, contact := range c.Contacts {
		if contact.Name == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("contacts[%d].name", i),
				Reason: "required field is missing",
			}
		}
	}
	return nil
}

// ValidateClientPatch checks the supplied fields of a sparse update.
func ValidateClientPatch(p ClientPatch) error {
	if p.Name != nil && *p.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Status != nil && !validClientStatus(*p.Status) {
		return badVariant("status", *p.Status)
	}
	if p.Contacts != nil {
		for i, contact := range *p.Contacts {
			if contact.Name == "" {
				return &ValidationError{
					Field:  fmt.Sprintf("contacts[%d].name", i),
					Reason: "required field is missing",
				}
			}
		}
	}
	return nil
}

// ValidateEcosystemProduct checks a create argument against the schema.
func ValidateEcosystemProduct(p *EcosystemProduct) error {
	if p.Slug == "" {
		return missingField("slug")
	}
	if p.Name == "" {
		return missingField("name")
	}
	if !validProductStatus(p.Status) {
		return badVariant("status", p.Status)
	}
	return nil
}

// ValidateActivity checks an append argument against the schema.
// Type is free-form; metadata is an open-ended record.
func ValidateActivity(a *Activity) error {
	if a.Type == "" {
		return missingField("type")
	}
	if a.Description == "" {
		return missingField("description")
	}
	return nil
}

// ValidateTaskStatus checks a status-update argument.
func ValidateTaskStatus(s TaskStatus) error {
	if !validTaskStatus(s) {
		return badVariant("status", s)
	}
	return nil
}
