package app

import (
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/modules/clean"
	"github.com/vk/jarsmith/modules/dependencies"
	"github.com/vk/jarsmith/modules/jar"
	"github.com/vk/jarsmith/modules/javacompile"
	"github.com/vk/jarsmith/modules/javatest"
	"github.com/vk/jarsmith/modules/lifecycle"
	"github.com/vk/jarsmith/modules/resolve"
	"github.com/vk/jarsmith/modules/resources"
)

// coreModules is the definitive list of all modules that are compiled into
// the jarsmith binary.
var coreModules = []registry.Module{
	&resolve.Module{},
	&resources.Module{},
	&javacompile.Module{},
	&javatest.Module{},
	&jar.Module{},
	&lifecycle.Module{},
	&dependencies.Module{},
	&clean.Module{},
}
