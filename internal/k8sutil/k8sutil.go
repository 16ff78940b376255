// Package k8sutil builds the small set of cluster resource shapes the
// pipeline layer needs: name sanitization plus secret and scratch volumes
// with their mounts.
package k8sutil

import (
	"regexp"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

const maxNameLength = 63

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	invalidChars  = regexp.MustCompile(`[^-a-z0-9]+`)
	dashRuns      = regexp.MustCompile(`-+`)
)

// SanitizeName converts a human-readable name into a string safe for use as
// a cluster resource name: lower-case alphanumerics and dashes, no leading
// or trailing dash, at most 63 characters. CamelCase boundaries become
// dashes so Go function names keep their word structure.
func SanitizeName(name string) string {
	name = camelBoundary.ReplaceAllString(name, "$1-$2")
	name = strings.ToLower(name)
	name = invalidChars.ReplaceAllString(name, "-")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if len(name) > maxNameLength {
		name = strings.Trim(name[:maxNameLength], "-")
	}

	return name
}

// SecretVolume returns a volume sourced from the named secret. The volume
// name matches the secret name.
func SecretVolume(secretName string) corev1.Volume {
	return corev1.Volume{
		Name: secretName,
		VolumeSource: corev1.VolumeSource{
			Secret: &corev1.SecretVolumeSource{SecretName: secretName},
		},
	}
}

// EmptyDirVolume returns an empty writable volume.
func EmptyDirVolume(name string) corev1.Volume {
	return corev1.Volume{
		Name: name,
		VolumeSource: corev1.VolumeSource{
			EmptyDir: &corev1.EmptyDirVolumeSource{},
		},
	}
}

// Mount returns a writable mount of the named volume at mountPath.
func Mount(name, mountPath string) corev1.VolumeMount {
	return corev1.VolumeMount{
		Name:      name,
		MountPath: mountPath,
	}
}

// ReadOnlyMount returns a read-only mount of the named volume at mountPath.
func ReadOnlyMount(name, mountPath string) corev1.VolumeMount {
	return corev1.VolumeMount{
		Name:      name,
		MountPath: mountPath,
		ReadOnly:  true,
	}
}
