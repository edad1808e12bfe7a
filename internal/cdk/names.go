package cdk

import "fmt"

// Stack and SSM parameter names for a capture cluster. The CDK app derives the same
// names, so these must not change for existing clusters.

func CaptureBucketStackName(cluster string) string {
	return fmt.Sprintf("%s-CaptureBucket", cluster)
}

func CaptureBucketSsmParamName(cluster string) string {
	return fmt.Sprintf("/arkime/clusters/%s/capture-bucket-name", cluster)
}

func CaptureNodesStackName(cluster string) string {
	return fmt.Sprintf("%s-CaptureNodes", cluster)
}

func CaptureVpcStackName(cluster string) string {
	return fmt.Sprintf("%s-CaptureVPC", cluster)
}

func OSDomainStackName(cluster string) string {
	return fmt.Sprintf("%s-OSDomain", cluster)
}

func OSDomainSsmParamName(cluster string) string {
	return fmt.Sprintf("/arkime/clusters/%s/os-domain", cluster)
}

func ViewerNodesStackName(cluster string) string {
	return fmt.Sprintf("%s-ViewerNodes", cluster)
}
