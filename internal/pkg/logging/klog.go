// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

package logging

import (
	"flag"
	"strconv"

	"k8s.io/klog/v2"
)

// KLog is used by the k8s.io retry and wait helpers, route it to the root logger.

var klogFlags flag.FlagSet

func klogInit() {
	klog.SetLogger(root)
	klog.InitFlags(&klogFlags)
}

func klogVerbose(level int) {
	_ = klogFlags.Set("v", strconv.Itoa(level))
}
