// AWS-backed implementations of queue listing, alarm management and notifications
package awsinventory

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

func NewSession(region string) (*session.Session, error) {
	return session.NewSession(aws.NewConfig().WithRegion(region))
}
