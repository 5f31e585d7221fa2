package diagram

import (
	"fmt"
	"strings"

	"github.com/lablink-dev/figgen/pkg/errors"
	"github.com/lablink-dev/figgen/pkg/terraform"
)

// DOT builds the Graphviz source for one concrete diagram kind. The
// "all" alias must be expanded by the caller before rendering.
func DOT(kind Kind, cfg *terraform.Config, preset string) (string, error) {
	if cfg == nil {
		cfg = &terraform.Config{}
	}
	f := fontsFor(preset)
	switch kind {
	case KindMain:
		return mainDOT(f), nil
	case KindDetailed:
		return detailedDOT(cfg, f), nil
	case KindNetworkFlow:
		return networkFlowDOT(f), nil
	case KindVMProvisioning:
		return vmProvisioningDOT(f), nil
	}
	return "", errors.New(errors.ErrCodeInvalidDiagram,
		"diagram type %q does not render directly", kind)
}

// detailedPlaced lists the resource types the detailed topology already
// places in a named cluster or expresses as an edge, so the catch-all
// cluster holds everything else.
var detailedPlaced = map[string]bool{
	"aws_instance":                           true,
	"aws_lb":                                 true,
	"aws_lb_target_group":                    true,
	"aws_route53_record":                     true,
	"aws_cloudwatch_log_group":               true,
	"aws_cloudwatch_log_subscription_filter": true,
	"aws_lambda_function":                    true,
	"aws_iam_role":                           true,
	"aws_iam_policy":                         true,
	"aws_security_group":                     true,
}

// annotate appends the condition note to a conditional resource label.
func annotate(label string, r terraform.Resource) string {
	if r.Conditional && r.Condition != "" {
		cond := strings.NewReplacer("local.", "", "&&", "&").Replace(r.Condition)
		return label + "\n(When " + cond + ")"
	}
	return label
}

func styleFor(r terraform.Resource) nodeStyle {
	if r.Conditional {
		return styleConditional
	}
	return styleSolid
}

// nodeIDs returns prefixed node IDs for the resources, or the fallback
// ID alone when the configuration has none of that type.
func nodeIDs(prefix string, rs []terraform.Resource, fallback string) []string {
	if len(rs) == 0 {
		return []string{fallback}
	}
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = prefix + r.Name
	}
	return out
}

// mainDOT is the simplified core architecture for paper and poster use.
// The topology is fixed; only fonts vary with the preset.
func mainDOT(f fontPreset) string {
	d := newDot("LabLink Core Architecture", f, "LR")

	d.node("admin", "Admin", actor, styleSolid)
	d.cluster("LabLink Infrastructure", func() {
		d.node("allocator", "Allocator", templateFor("aws_instance"), styleSolid)
	})
	d.cluster("Dynamic Compute", func() {
		for i := 1; i <= 3; i++ {
			d.node(fmt.Sprintf("client_vm_%d", i), "Client VM", templateFor("aws_instance"), styleProvisioned)
		}
	})
	d.cluster("Observability", func() {
		d.node("cloudwatch", "Client VM Logs\n(AWS CloudWatch)", templateFor("aws_cloudwatch_log_group"), styleSolid)
		d.node("log_processor", "Log Processor", templateFor("aws_lambda_function"), styleSolid)
	})

	d.blank()
	d.edge("admin", "allocator", edgeOpts{label: "API Requests"})
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("client_vm_%d", i)
		d.edge("allocator", id, edgeOpts{label: "Provisions", color: provisionedColor})
		d.edge(id, "cloudwatch", edgeOpts{label: "Logs"})
	}
	d.edge("cloudwatch", "log_processor", edgeOpts{label: "Triggers"})
	d.edge("log_processor", "allocator", edgeOpts{label: "Callback"})
	return d.String()
}

// detailedDOT shows every parsed component with static fallbacks, so an
// empty configuration still yields the reference topology.
func detailedDOT(cfg *terraform.Config, f fontPreset) string {
	d := newDot("LabLink Detailed Architecture", f, "TB")

	d.node("users", "External Users", actor, styleSolid)

	r53s := cfg.ByType("aws_route53_record")
	albs := cfg.ByType("aws_lb")
	d.cluster("Access Layer (Configurable)", func() {
		if len(r53s) == 0 {
			d.node("r53_dns", "DNS (Optional)", templateFor("aws_route53_record"), styleSolid)
		}
		for _, r := range r53s {
			label := r.Attributes["name"]
			if label == "" {
				label = r.Name
			}
			d.node("r53_"+r.Name, annotate(label, r), templateFor(r.Type), styleFor(r))
		}
		if len(albs) == 0 {
			d.node("alb_default", "ALB (When ACM)", templateFor("aws_lb"), styleSolid)
		}
		for _, r := range albs {
			d.node("alb_"+r.Name, annotate(r.Name, r), templateFor(r.Type), styleFor(r))
		}
		d.node("target_group", "Target Group", templateFor("aws_lb_target_group"), styleSolid)
	})

	ec2s := cfg.ByType("aws_instance")
	d.cluster("LabLink Infrastructure", func() {
		if len(ec2s) == 0 {
			d.node("ec2_allocator", "Allocator Server", templateFor("aws_instance"), styleSolid)
		}
		for _, r := range ec2s {
			instanceType := r.Attributes["instance_type"]
			if instanceType == "" {
				instanceType = "unknown"
			}
			label := r.Name + "\n(" + instanceType + ")"
			d.node("ec2_"+r.Name, annotate(label, r), templateFor(r.Type), styleFor(r))
		}
	})

	d.cluster("Dynamic Compute (Runtime-Provisioned)", func() {
		d.node("client_vms", "Client VMs\n(Provisioned per experiment)", templateFor("aws_instance"), styleProvisioned)
	})

	cws := cfg.ByType("aws_cloudwatch_log_group")
	lambdas := cfg.ByType("aws_lambda_function")
	d.cluster("Observability & Logging", func() {
		if len(cws) == 0 {
			d.node("cw_logs", "CloudWatch Logs", templateFor("aws_cloudwatch_log_group"), styleSolid)
		}
		for _, r := range cws {
			name := r.Attributes["name"]
			if name == "" {
				name = r.Name
			}
			// Log group names are slash paths; the leaf is enough.
			if i := strings.LastIndex(name, "/"); i >= 0 {
				name = name[i+1:]
			}
			d.node("cw_"+r.Name, annotate(name, r), templateFor(r.Type), styleFor(r))
		}
		if len(lambdas) == 0 {
			d.node("lambda_processor", "Log Processor", templateFor("aws_lambda_function"), styleSolid)
		}
		for _, r := range lambdas {
			label := r.Name
			if runtime := r.Attributes["runtime"]; runtime != "" {
				label += "\n" + runtime
			}
			d.node("lambda_"+r.Name, annotate(label, r), templateFor(r.Type), styleFor(r))
		}
	})

	iams := cfg.ByType("aws_iam_role")
	d.cluster("IAM & Permissions", func() {
		if len(iams) == 0 {
			d.node("iam_roles", "IAM Roles", templateFor("aws_iam_role"), styleSolid)
		}
		for _, r := range iams {
			name := r.Attributes["name"]
			if name == "" {
				name = r.Name
			}
			d.node("iam_"+r.Name, annotate(name, r), templateFor(r.Type), styleFor(r))
		}
	})

	// Resources outside the reference topology still render, gray boxed
	// when no template matches, so nothing parsed goes invisible.
	var others []terraform.Resource
	for _, r := range cfg.Resources {
		if !detailedPlaced[r.Type] {
			others = append(others, r)
		}
	}
	if len(others) > 0 {
		d.cluster("Other Resources", func() {
			for _, r := range others {
				d.node("other_"+r.Type+"_"+r.Name, annotate(r.Type+"\n"+r.Name, r), templateFor(r.Type), styleFor(r))
			}
		})
	}

	r53IDs := nodeIDs("r53_", r53s, "r53_dns")
	albIDs := nodeIDs("alb_", albs, "alb_default")
	ec2IDs := nodeIDs("ec2_", ec2s, "ec2_allocator")
	cwIDs := nodeIDs("cw_", cws, "cw_logs")
	lambdaIDs := nodeIDs("lambda_", lambdas, "lambda_processor")
	iamIDs := nodeIDs("iam_", iams, "iam_roles")

	d.blank()
	d.edge("users", r53IDs[0], edgeOpts{})
	d.edge(r53IDs[0], albIDs[0], edgeOpts{})
	d.edge(albIDs[0], "target_group", edgeOpts{})
	d.edge("target_group", ec2IDs[0], edgeOpts{})
	d.edge(ec2IDs[0], "client_vms", edgeOpts{label: "provisions via\nTerraform", color: provisionedColor, style: "dashed"})
	d.edge("client_vms", cwIDs[0], edgeOpts{label: "CloudWatch Agent"})
	d.edge(cwIDs[0], lambdaIDs[0], edgeOpts{label: "subscription filter", style: "dotted"})
	d.edge(lambdaIDs[0], ec2IDs[0], edgeOpts{label: "POST /api/vm-logs"})
	for _, id := range ec2IDs {
		d.edge(iamIDs[0], id, edgeOpts{label: "assumes", style: "dotted"})
	}
	for _, id := range lambdaIDs {
		d.edge(iamIDs[0], id, edgeOpts{label: "assumes", style: "dotted"})
	}
	d.edge(iamIDs[0], "client_vms", edgeOpts{label: "assumes", style: "dotted"})
	return d.String()
}

// networkFlowDOT traces one request through DNS, the load balancer, and
// the allocator API.
func networkFlowDOT(f fontPreset) string {
	d := newDot("LabLink Network Flow", f, "LR")

	d.node("request", "Client Request", actor, styleSolid)
	d.node("route53", "Route53\nDNS Lookup", templateFor("aws_route53_record"), styleSolid)
	d.node("alb", "Application LB\nSSL Termination", templateFor("aws_lb"), styleSolid)
	d.node("allocator", "Allocator Server\nPort 5000", templateFor("aws_instance"), styleSolid)
	d.node("response", "API Response", actor, styleSolid)

	d.blank()
	d.edge("request", "route53", edgeOpts{label: "1. HTTPS\nexample.com"})
	d.edge("route53", "alb", edgeOpts{label: "2. Resolve to\nALB DNS"})
	d.edge("alb", "allocator", edgeOpts{label: "3. HTTP:5000\nTarget Group"})
	d.edge("allocator", "response", edgeOpts{label: "4. JSON\nResponse"})
	return d.String()
}

// vmProvisioningDOT shows the launch path and the three-phase client VM
// startup sequence.
func vmProvisioningDOT(f fontPreset) string {
	d := newDot("LabLink VM Provisioning Workflow", f, "LR")

	d.node("admin", "Admin", actor, styleSolid)
	d.cluster("LabLink Infrastructure", func() {
		d.node("allocator", "Allocator", templateFor("aws_instance"), styleSolid)
		d.node("db", "PostgreSQL", database, styleSolid)
	})
	d.cluster("Provisioning", func() {
		d.node("terraform", "Terraform\nSubprocess", process, styleSolid)
	})
	d.cluster("Dynamic Compute", func() {
		d.node("client_vm", "Client VM", templateFor("aws_instance"), styleProvisioned)
	})
	d.cluster("3-Phase Startup Sequence", func() {
		d.node("phase1", "1. Cloud-init\nInstall agents", process, styleSolid)
		d.node("phase2", "2. Docker\nPull image", container, styleSolid)
		d.node("phase3", "3. Application\nSoftware ready", process, styleSolid)
	})

	d.blank()
	d.edge("admin", "allocator", edgeOpts{label: "1. POST /api/launch"})
	d.edge("allocator", "terraform", edgeOpts{label: "2. Execute terraform apply", color: provisionedColor})
	d.edge("terraform", "client_vm", edgeOpts{label: "3. Provisions", color: provisionedColor})
	d.edge("client_vm", "phase1", edgeOpts{label: "Starts"})
	d.edge("phase1", "phase2", edgeOpts{})
	d.edge("phase2", "phase3", edgeOpts{})
	d.edge("phase3", "allocator", edgeOpts{label: "4. Status updates\n(POST /api/vm-metrics)", color: conditionalColor, style: "dashed"})
	d.edge("allocator", "db", edgeOpts{label: "5. Store metrics"})
	return d.String()
}
