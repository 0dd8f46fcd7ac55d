package events

// Tag keys read from EC2 instances.
const (
	TagElastigroupID = "spotinst:aws:ec2:group:id"
	TagASGName       = "aws:autoscaling:groupName"
	TagApplication   = "application"
	TagEnvironment   = "environment"
	TagEnv           = "env"
	TagTeam          = "team"
)

// InstanceTags holds the instance tags used for attribution. Empty fields
// mean the tag is absent.
type InstanceTags struct {
	ElastigroupID string
	ASGName       string
	Application   string
	Environment   string
	Env           string
	Team          string
}

// NewInstanceTags picks the attribution tags out of a raw key/value mapping.
func NewInstanceTags(tags map[string]string) InstanceTags {
	return InstanceTags{
		ElastigroupID: tags[TagElastigroupID],
		ASGName:       tags[TagASGName],
		Application:   tags[TagApplication],
		Environment:   tags[TagEnvironment],
		Env:           tags[TagEnv],
		Team:          tags[TagTeam],
	}
}

// GroupName returns the deployment group the instance belongs to. The
// orchestrator group wins over the native auto scaling group.
func (t InstanceTags) GroupName() (string, bool) {
	if t.ElastigroupID != "" {
		return t.ElastigroupID, true
	}
	if t.ASGName != "" {
		return t.ASGName, true
	}
	return "", false
}

// EnvironmentName prefers the explicit environment tag over the env shorthand.
func (t InstanceTags) EnvironmentName() string {
	if t.Environment != "" {
		return t.Environment
	}
	return t.Env
}
